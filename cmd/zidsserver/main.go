// Command zidsserver hosts the GDFA token endpoint: POST /token, GET
// /gdfa/info, and GET /health, backed by a GDFA container built by
// zidsbuild and its full secrets dump.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SJieNg123/zids/container"
	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/secretstore"
	"github.com/SJieNg123/zids/streammgr"
	"github.com/SJieNg123/zids/zidserr"
	"github.com/SJieNg123/zids/zidslog"

	"github.com/op/go-logging"
)

var log = zidslog.Log

const apiVersion = "1.0"

// gkStore adapts a secretstore.Secrets GK matrix to streammgr.RowKeys.
type gkStore struct{ gk [][][]byte }

func (s gkStore) GK(rowID int) ([][]byte, error) {
	if rowID < 0 || rowID >= len(s.gk) {
		return nil, zidserr.OutOfRangef("zidsserver: row_id %d out of range", rowID)
	}
	return s.gk[rowID], nil
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Ver     string `json:"ver"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: code, Message: message, Ver: apiVersion})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errStatus(err error) (int, string) {
	if ze, ok := err.(zidserr.Error); ok {
		switch ze.Code() {
		case zidserr.CodeOutOfRange:
			return http.StatusBadRequest, "out_of_range"
		case zidserr.CodeLengthMismatch:
			return http.StatusBadRequest, "length_mismatch"
		default:
			return http.StatusInternalServerError, "server_error"
		}
	}
	return http.StatusInternalServerError, "server_error"
}

type tokenRequest struct {
	RowID int    `json:"row_id"`
	X     int    `json:"x"`
	SID   string `json:"sid,omitempty"`
}

type tokenResponse struct {
	TokenB64 string `json:"token_b64"`
	Ver      string `json:"ver"`
}

func tokenHandler(sm *streammgr.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "bad_request", "POST only")
			return
		}
		var tr tokenRequest
		if err := json.NewDecoder(req.Body).Decode(&tr); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
			return
		}
		if tr.X < 0 || tr.X > 255 {
			writeError(w, http.StatusBadRequest, "invalid_symbol", "x must be 0..255")
			return
		}
		sid := tr.SID
		if sid == "" {
			sid = req.RemoteAddr
		}
		token, err := sm.Token(sid, tr.RowID, byte(tr.X))
		if err != nil {
			status, code := errStatus(err)
			writeError(w, status, code, err.Error())
			return
		}
		writeJSON(w, tokenResponse{TokenB64: base64.StdEncoding.EncodeToString(token), Ver: apiVersion})
	}
}

func infoHandler(header *gdfa.PublicHeader) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resp := struct {
			*gdfa.PublicHeader
			Ver string `json:"ver"`
		}{header, apiVersion}
		writeJSON(w, resp)
	}
}

func healthHandler(serverID string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resp := struct {
			Status string `json:"status"`
			Ver    string `json:"ver"`
			Server string `json:"server,omitempty"`
		}{Status: "ok", Ver: apiVersion, Server: serverID}
		writeJSON(w, resp)
	}
}

func loadContainer(dir, singleFile string) (*gdfa.PublicHeader, error) {
	if singleFile != "" {
		data, err := os.ReadFile(singleFile)
		if err != nil {
			return nil, err
		}
		tf, err := container.ReadSingleFile(data, true)
		if err != nil {
			return nil, err
		}
		return tf.Header, nil
	}
	headerBytes, err := os.ReadFile(dir + "/header.json")
	if err != nil {
		return nil, err
	}
	rowsBytes, err := os.ReadFile(dir + "/rows.bin")
	if err != nil {
		return nil, err
	}
	tf, err := container.ReadTwoFile(headerBytes, rowsBytes, true)
	if err != nil {
		return nil, err
	}
	return tf.Header, nil
}

func main() {
	dir := flag.String("dir", ".", "directory containing header.json/rows.bin")
	containerPath := flag.String("container", "", "path to a single-file GDFA container (overrides -dir)")
	addr := flag.String("addr", "0.0.0.0:10011", "listen address")
	masterKeyHex := flag.String("master-key-hex", "", "hex AES key the secrets.json was sealed under, if any")
	serverID := flag.String("server-id", "", "optional server identifier reported on /health")
	flag.Parse()

	zidslog.Setup("zidsserver", logging.NOTICE, os.Stderr)

	header, err := loadContainer(*dir, *containerPath)
	if err != nil {
		log.Fatalf("load container: %v", err)
	}
	log.Noticef("loaded GDFA header: %d states, start_row=%d", header.NumStates, header.StartRow)

	masterKey, err := secretstore.ParseMasterKeyHex(*masterKeyHex)
	if err != nil {
		log.Fatalf("%v", err)
	}
	secrets, err := secretstore.Read(*dir, masterKey)
	if err != nil {
		log.Fatalf("load secrets.json (requires --save-secrets full at build time): %v", err)
	}
	if secrets.GK == nil {
		log.Fatalf("secrets.json has no group keys; rebuild with --save-secrets full")
	}

	group := ddhgroup.DefaultGroup()
	sm := streammgr.NewManager(group, header, gkStore{gk: secrets.GK}, []byte("OT256"))
	defer sm.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(sm))
	mux.HandleFunc("/gdfa/info", infoHandler(header))
	mux.HandleFunc("/health", healthHandler(*serverID))

	ctx, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Noticef("listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Notice("shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	cancel()
}
