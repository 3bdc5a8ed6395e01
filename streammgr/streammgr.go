// Package streammgr manages the server side of the 1-of-256 token service
// across concurrently connected evaluation streams: each stream owns its
// own per-row OT table, rebuilt with a fresh 16-byte sid salt on first
// use, while every stream shares the same read-only group-key matrix and
// row ciphertexts.
//
// Sessions live in a mutex-guarded map keyed by an opaque client-supplied
// id. A background goroutine reaps sessions that have gone idle past a
// configurable timeout, and a session can also be destroyed on demand.
package streammgr

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/ot1ofm"
	"github.com/SJieNg123/zids/zidserr"
	"github.com/SJieNg123/zids/zidslog"
)

var log = zidslog.Log

// DefaultIdleTimeout is the staleness window after which an inactive
// client's session is reaped.
const DefaultIdleTimeout = 1200 * time.Second

// reapTick is the interval between sweeps of the idle-reaping goroutine.
// A var rather than a const so tests can shrink it.
var reapTick = time.Second

// RowKeys resolves a row id to its server-secret group keys, one per
// column (outmax entries), as frozen by the offline build.
type RowKeys interface {
	GK(rowID int) ([][]byte, error)
}

// Manager serves 1-of-256 OT tokens for a fixed public header and its
// frozen group-key matrix, across any number of concurrently active
// client sessions.
type Manager struct {
	group  *ddhgroup.Group
	header *gdfa.PublicHeader
	keys   RowKeys
	label  []byte

	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*stream
	stop     chan struct{}
}

type stream struct {
	sid      []byte
	tables   map[int]*ot1ofm.Table256
	lastSeen time.Time
}

// NewManager builds a Manager with DefaultIdleTimeout. label is the
// service-wide OT domain label, before the per-row "|row=" suffix.
func NewManager(group *ddhgroup.Group, header *gdfa.PublicHeader, keys RowKeys, label []byte) *Manager {
	return NewManagerWithIdleTimeout(group, header, keys, label, DefaultIdleTimeout)
}

// NewManagerWithIdleTimeout builds a Manager whose idle-reaping goroutine
// uses the given timeout instead of DefaultIdleTimeout.
func NewManagerWithIdleTimeout(group *ddhgroup.Group, header *gdfa.PublicHeader, keys RowKeys, label []byte, idleTimeout time.Duration) *Manager {
	m := &Manager{
		group:       group,
		header:      header,
		keys:        keys,
		label:       append([]byte(nil), label...),
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*stream),
		stop:        make(chan struct{}),
	}
	go m.reap()
	return m
}

// Token serves the OT256 table entry for (rowID, x) within the client
// session identified by sid, building and caching that row's table on
// first access per session.
func (m *Manager) Token(sid string, rowID int, x byte) ([]byte, error) {
	if rowID < 0 || rowID >= m.header.NumStates {
		return nil, zidserr.OutOfRangef("streammgr: row_id %d out of range [0,%d)", rowID, m.header.NumStates)
	}

	st, err := m.getOrCreateStream(sid)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	table, ok := st.tables[rowID]
	m.mu.Unlock()
	if !ok {
		table, err = m.buildRowTable(st.sid, rowID)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		st.tables[rowID] = table
		m.mu.Unlock()
	}

	chooser := ot1ofm.NewChooser256(m.group, gdfa.RowOTLabel(m.label, rowID), table)
	return chooser.Choose(int(x))
}

func (m *Manager) getOrCreateStream(sid string) (*stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[sid]; ok {
		st.lastSeen = time.Now()
		return st, nil
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("streammgr: sample session sid: %w", err)
	}
	st := &stream{sid: salt, tables: make(map[int]*ot1ofm.Table256), lastSeen: time.Now()}
	m.sessions[sid] = st
	log.Infof("streammgr: new session %s", sid)
	return st, nil
}

func (m *Manager) buildRowTable(sid []byte, rowID int) (*ot1ofm.Table256, error) {
	gk, err := m.keys.GK(rowID)
	if err != nil {
		return nil, err
	}
	kPrimeBytes := 0
	for _, k := range gk {
		if len(k) > kPrimeBytes {
			kPrimeBytes = len(k)
		}
	}
	sec := odfa.SecurityParams{KBits: 128, KPrimeBits: kPrimeBytes * 8, Kappa: 128, AlphabetSize: m.header.AlphabetSize}
	sp := odfa.SparsityParams{Outmax: m.header.Outmax, Cmax: m.header.Cmax}
	pack, err := odfa.MakePacking(sec, sp)
	if err != nil {
		return nil, err
	}
	alpha := odfa.DefaultRowAlphabet(m.header.AlphabetSize, m.header.Outmax, m.header.Cmax)

	return gdfa.BuildRowOTPlanWithSID(m.group, rowID, gk, alpha, pack, m.label, sid)
}

// Destroy drops a client session and its cached row tables.
func (m *Manager) Destroy(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sid]; ok {
		delete(m.sessions, sid)
		log.Infof("streammgr: destroyed session %s", sid)
	}
}

func (m *Manager) reap() {
	ticker := time.NewTicker(reapTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for k, st := range m.sessions {
				if now.Sub(st.lastSeen) > m.idleTimeout {
					delete(m.sessions, k)
					log.Infof("streammgr: reaped stale session %s", k)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// Close stops the idle-reaping goroutine.
func (m *Manager) Close() {
	close(m.stop)
}
