// Package asset resolves asset identifiers and classifies assets as
// on-chain (stellar:) or off-chain (iso4217:).
package asset

import (
	"fmt"
	"strings"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

const (
	stellarPrefix = "stellar:"
	iso4217Prefix = "iso4217:"

	// NativeAssetCode is the code of the Stellar native asset.
	NativeAssetCode = "native"
)

// IsStellar reports whether the identifier names an on-chain asset.
func IsStellar(assetID string) bool {
	return strings.HasPrefix(assetID, stellarPrefix)
}

// Code extracts the asset code from a full identifier:
// "stellar:USDC:GA..." -> "USDC", "iso4217:USD" -> "USD",
// "stellar:native" -> "native".
func Code(assetID string) string {
	parts := strings.Split(assetID, ":")
	if len(parts) < 2 {
		return assetID
	}
	return parts[1]
}

// Issuer extracts the issuer account from a stellar identifier, or ""
// for native and off-chain assets.
func Issuer(assetID string) string {
	parts := strings.Split(assetID, ":")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// ID builds the canonical identifier for an asset.
func ID(info platformrpc.AssetInfo) string {
	if info.Schema == platformrpc.SchemaStellar {
		if info.Code == NativeAssetCode {
			return stellarPrefix + NativeAssetCode
		}
		return fmt.Sprintf("%s%s:%s", stellarPrefix, info.Code, info.Issuer)
	}
	return iso4217Prefix + info.Code
}

// Service is a static platformrpc.AssetService backed by the anchor's
// configured asset list.
type Service struct {
	byCode map[string]platformrpc.AssetInfo
	byID   map[string]platformrpc.AssetInfo
}

// NewService builds a Service from the supported asset list. When two
// assets share a code, the first one wins for bare-code lookup.
func NewService(assets []platformrpc.AssetInfo) *Service {
	s := &Service{
		byCode: make(map[string]platformrpc.AssetInfo, len(assets)),
		byID:   make(map[string]platformrpc.AssetInfo, len(assets)),
	}
	for _, a := range assets {
		if _, ok := s.byCode[a.Code]; !ok {
			s.byCode[a.Code] = a
		}
		s.byID[ID(a)] = a
	}
	return s
}

// GetAsset resolves a bare code. Unknown codes return nil.
func (s *Service) GetAsset(code string) *platformrpc.AssetInfo {
	if a, ok := s.byCode[code]; ok {
		return &a
	}
	return nil
}

// GetAssetByID resolves a full identifier. Unknown ids return nil.
func (s *Service) GetAssetByID(id string) *platformrpc.AssetInfo {
	if a, ok := s.byID[id]; ok {
		return &a
	}
	return nil
}

var _ platformrpc.AssetService = (*Service)(nil)
