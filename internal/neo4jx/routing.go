package neo4jx

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/roach88/quiver/internal/queryir"
)

// DriverAccessMode maps an access mode to the driver's session mode.
func DriverAccessMode(mode queryir.AccessMode) (neo4j.AccessMode, error) {
	switch mode {
	case queryir.AccessRead:
		return neo4j.AccessModeRead, nil
	case queryir.AccessWrite:
		return neo4j.AccessModeWrite, nil
	default:
		return neo4j.AccessModeWrite, fmt.Errorf("unknown access mode %q", mode)
	}
}

// SessionConfig returns the session configuration for a query with the
// given mode. An empty database selects the server default.
func SessionConfig(mode queryir.AccessMode, database string) (neo4j.SessionConfig, error) {
	am, err := DriverAccessMode(mode)
	if err != nil {
		return neo4j.SessionConfig{}, err
	}
	return neo4j.SessionConfig{AccessMode: am, DatabaseName: database}, nil
}
