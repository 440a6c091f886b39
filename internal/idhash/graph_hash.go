package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"portfolio-graphs/internal/domain"
)

// GraphHashLength is the number of hex characters kept from the digest.
// Changing it (or the field order below) invalidates every stored cache key.
const GraphHashLength = 32

// ComputeGraphHash computes the cache key of a graph request using SHA256.
// Formula: SHA256(days,delta,arg0,arg0_resolved,user_id,user_hash,technical_type,technical_period)
// Returns the first GraphHashLength hex characters.
func ComputeGraphHash(req domain.GraphRequest) string {
	data := strings.Join([]string{
		strconv.Itoa(req.Days),
		string(req.Delta),
		req.Arg0,
		req.Arg0Resolved,
		req.UserIDString(),
		req.UserHash,
		req.TechnicalType(),
		req.TechnicalPeriodString(),
	}, ",")

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:GraphHashLength]
}

// GraphNamespace returns the cache namespace of a graph type.
func GraphNamespace(graphType string) string {
	return "graph_" + graphType
}
