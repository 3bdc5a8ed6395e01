// Package paramsetup implements the client's Step-0 parameter-exchange
// bookkeeping: validating a server-advertised DDH group and GDFA security
// parameters before trusting them for any OT or pad derivation.
package paramsetup

import (
	"math/big"

	"github.com/SJieNg123/zids/ddhgroup"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/zidserr"
)

// PublicParams is the wire shape of a server's Step-0 advertisement: the
// DDH group it will run OT over, plus the GDFA security/sparsity knobs the
// client needs to plan its own row/cell decoding.
type PublicParams struct {
	PHex string `json:"p_hex"`
	QHex string `json:"q_hex"`
	GHex string `json:"g_hex"`

	Security odfa.SecurityParams `json:"security"`
	Sparsity odfa.SparsityParams `json:"sparsity"`
}

// ClientOfflineState is the validated, ready-to-use result of accepting a
// server's PublicParams: a confirmed-valid DDH group plus the same security
// and sparsity parameters, now trusted.
type ClientOfflineState struct {
	Group    *ddhgroup.Group
	Security odfa.SecurityParams
	Sparsity odfa.SparsityParams
}

// Accept validates pp and returns the resulting offline state. The DDH
// group is rejected unless g has order q in Z_p^* (ddhgroup.NewGroup's
// validateGenerator), and the security/sparsity parameters are rejected
// unless internally consistent (their own Validate methods) — a server
// must not be trusted simply because it claims parameters; the receiver
// checks group membership before building any public key from it.
func Accept(pp PublicParams) (*ClientOfflineState, error) {
	p, ok := new(big.Int).SetString(pp.PHex, 16)
	if !ok {
		return nil, zidserr.InvalidParameterf("paramsetup: p_hex is not valid hex")
	}
	q, ok := new(big.Int).SetString(pp.QHex, 16)
	if !ok {
		return nil, zidserr.InvalidParameterf("paramsetup: q_hex is not valid hex")
	}
	g, ok := new(big.Int).SetString(pp.GHex, 16)
	if !ok {
		return nil, zidserr.InvalidParameterf("paramsetup: g_hex is not valid hex")
	}

	group, err := ddhgroup.NewGroup(p, q, g)
	if err != nil {
		return nil, zidserr.BadPublicKeyf("paramsetup: server group rejected: %v", err)
	}

	if err := pp.Security.Validate(); err != nil {
		return nil, err
	}
	if err := pp.Sparsity.Validate(pp.Security.AlphabetSize); err != nil {
		return nil, err
	}

	return &ClientOfflineState{Group: group, Security: pp.Security, Sparsity: pp.Sparsity}, nil
}

// Advertise builds a PublicParams from a live group and parameters, the
// server-side counterpart to Accept.
func Advertise(group *ddhgroup.Group, sec odfa.SecurityParams, sp odfa.SparsityParams) PublicParams {
	return PublicParams{
		PHex:     group.P.Text(16),
		QHex:     group.Q.Text(16),
		GHex:     group.G.Text(16),
		Security: sec,
		Sparsity: sp,
	}
}
