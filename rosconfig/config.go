// Package rosconfig resolves the ambient environment a node boots with:
// the master URI, advertised hostname, default namespace, and the log/home
// directories consumed (but not enforced) by the core (spec.md §6), plus the
// "name:=value" command-line remap tokens a process is launched with.
//
// This is the one ambient concern deliberately left on the standard
// library: CLI argument reshaping is explicitly out of scope (§1), and no
// flag-parsing library fits a plain os.Getenv-based config struct this
// small.
package rosconfig

import (
	"fmt"
	"os"
	"strings"
)

// Config is the resolved, immutable snapshot captured once at node init.
type Config struct {
	MasterURI string
	Hostname  string
	Namespace string
	LogDir    string
	Home      string

	// NodeNameOverride, set by the __name remap token, wins over the name
	// passed to the node constructor.
	NodeNameOverride string
	// Remap holds every other "a:=b" token, applied to subsequent name
	// resolutions after normalization (spec.md §4.10).
	Remap map[string]string
}

// ErrMissingMasterURI is returned when ROS_MASTER_URI is unset; node init
// treats this as exit code 1 (spec.md §6: initialization failure).
var ErrMissingMasterURI = fmt.Errorf("rosconfig: ROS_MASTER_URI is not set")

// MisconfigurationError wraps an invalid remap token or malformed
// ROS_MASTER_URI; node init treats this as exit code 2 (spec.md §6).
type MisconfigurationError struct {
	Reason string
}

func (e *MisconfigurationError) Error() string {
	return "rosconfig: misconfiguration: " + e.Reason
}

// FromEnviron reads the environment variables spec.md §6 lists, then layers
// in argv-style remap tokens ("a:=b"). The special tokens __name, __ns,
// __ip, __hostname, __master, __log override the corresponding field
// instead of entering the general Remap table.
func FromEnviron(argv []string) (*Config, error) {
	masterURI := os.Getenv("ROS_MASTER_URI")
	if masterURI == "" {
		return nil, ErrMissingMasterURI
	}

	hostname := os.Getenv("ROS_HOSTNAME")
	if hostname == "" {
		hostname = os.Getenv("ROS_IP")
	}

	cfg := &Config{
		MasterURI: masterURI,
		Hostname:  hostname,
		Namespace: os.Getenv("ROS_NAMESPACE"),
		LogDir:    os.Getenv("ROS_LOG_DIR"),
		Home:      os.Getenv("ROS_HOME"),
		Remap:     make(map[string]string),
	}

	for _, tok := range argv {
		name, value, ok := strings.Cut(tok, ":=")
		if !ok {
			continue // not a remap token, ignore (CLI arg reshaping is out of scope, §1)
		}
		switch name {
		case "__name":
			cfg.NodeNameOverride = value
		case "__ns":
			cfg.Namespace = value
		case "__ip":
			cfg.Hostname = value
		case "__hostname":
			cfg.Hostname = value
		case "__master":
			cfg.MasterURI = value
		case "__log":
			cfg.LogDir = value
		default:
			if name == "" {
				return nil, &MisconfigurationError{Reason: fmt.Sprintf("empty remap source in token %q", tok)}
			}
			cfg.Remap[name] = value
		}
	}

	if cfg.MasterURI == "" {
		return nil, ErrMissingMasterURI
	}
	if !strings.Contains(cfg.MasterURI, "://") {
		return nil, &MisconfigurationError{Reason: fmt.Sprintf("ROS_MASTER_URI %q is not a URI", cfg.MasterURI)}
	}
	return cfg, nil
}

// ExitCode maps an init-time error to the process exit code spec.md §6
// defines: 0 clean, 1 initialization failure, 2 misconfiguration.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(*MisconfigurationError); ok {
		return 2
	}
	return 1
}
