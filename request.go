package download_prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/download-prompt/generic"
)

var (
	ErrUnknownConnectionType = errors.New("unknown connection type")
	ErrUnknownDialogReason   = errors.New("unknown location dialog reason")
	ErrEmptySuggestedPath    = errors.New("suggested path must not be empty")
)

// ConnectionType is the class of network the download would run over.
type ConnectionType int

const (
	ConnectionNone ConnectionType = iota
	ConnectionUnknown
	ConnectionEthernet
	ConnectionWifi
	ConnectionCellular2G
	ConnectionCellular3G
	ConnectionCellular4G
	ConnectionCellular5G
	ConnectionBluetooth
)

var connectionTypeNames = map[ConnectionType]string{
	ConnectionNone:       "none",
	ConnectionUnknown:    "unknown",
	ConnectionEthernet:   "ethernet",
	ConnectionWifi:       "wifi",
	ConnectionCellular2G: "2g",
	ConnectionCellular3G: "3g",
	ConnectionCellular4G: "4g",
	ConnectionCellular5G: "5g",
	ConnectionBluetooth:  "bluetooth",
}

var slowConnections = generic.NewSet(ConnectionCellular2G, ConnectionBluetooth)

func (c ConnectionType) String() string {
	if name, ok := connectionTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ConnectionType(%d)", int(c))
}

// IsSlow returns true for low-throughput connection classes (2G, Bluetooth tethering).
func (c ConnectionType) IsSlow() bool {
	return slowConnections.Contains(c)
}

func (c ConnectionType) valid() bool {
	_, ok := connectionTypeNames[c]
	return ok
}

func ParseConnectionType(s string) (ConnectionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range connectionTypeNames {
		if name == s {
			return c, nil
		}
	}
	return ConnectionUnknown, fmt.Errorf("%w: %q", ErrUnknownConnectionType, s)
}

// LocationDialogReason is why the location dialog would be shown; anything but LocationDialogDefault means the
// location dialog has something to tell the user and cannot be skipped.
type LocationDialogReason int

const (
	LocationDialogDefault LocationDialogReason = iota
	LocationDialogFirstTime
	LocationDialogLocationFull
	LocationDialogLocationNotFound
	LocationDialogNameConflict
	LocationDialogNameTooLong
	LocationDialogNoWriteAccess
	LocationDialogLocationSuggestion
)

var locationDialogReasonNames = map[LocationDialogReason]string{
	LocationDialogDefault:            "default",
	LocationDialogFirstTime:          "first_time",
	LocationDialogLocationFull:       "location_full",
	LocationDialogLocationNotFound:   "location_not_found",
	LocationDialogNameConflict:       "name_conflict",
	LocationDialogNameTooLong:        "name_too_long",
	LocationDialogNoWriteAccess:      "no_write_access",
	LocationDialogLocationSuggestion: "location_suggestion",
}

func (r LocationDialogReason) String() string {
	if name, ok := locationDialogReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("LocationDialogReason(%d)", int(r))
}

func (r LocationDialogReason) valid() bool {
	_, ok := locationDialogReasonNames[r]
	return ok
}

func ParseLocationDialogReason(s string) (LocationDialogReason, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range locationDialogReasonNames {
		if name == s {
			return r, nil
		}
	}
	return LocationDialogDefault, fmt.Errorf("%w: %q", ErrUnknownDialogReason, s)
}

// DownloadRequest is the inbound payload for one download decision.
type DownloadRequest struct {
	TotalBytes           uint64
	ConnectionType       ConnectionType
	LocationDialogReason LocationDialogReason
	// SuggestedPath is the full target path (directory and file name) proposed by the backend.
	SuggestedPath string
	// LaterDialogSupported is true when the current network allows deferring the download.
	LaterDialogSupported bool
	IsIncognito          bool
	// URL is only consulted by handoff handlers.
	URL string
}

// Validate reports every problem with the request at once.
func (r DownloadRequest) Validate() error {
	var result error
	if !r.ConnectionType.valid() {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrUnknownConnectionType, int(r.ConnectionType)))
	}
	if !r.LocationDialogReason.valid() {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrUnknownDialogReason, int(r.LocationDialogReason)))
	}
	if strings.TrimSpace(r.SuggestedPath) == "" {
		result = multierror.Append(result, ErrEmptySuggestedPath)
	}
	return result
}
