package flow

import (
	"fmt"

	"github.com/alanbriolat/download-prompt"
)

var connectionNames = map[download_prompt.ConnectionType]string{
	download_prompt.ConnectionCellular2G: "2G",
	download_prompt.ConnectionBluetooth:  "Bluetooth",
}

// Subtitle explains why the scheduling dialog is worth looking at: a slow connection takes precedence over a large
// file. A minFileSize of 0 disables the large file message.
func Subtitle(req download_prompt.DownloadRequest, minFileSize uint64) string {
	if req.ConnectionType.IsSlow() {
		name, ok := connectionNames[req.ConnectionType]
		if !ok {
			name = req.ConnectionType.String()
		}
		return fmt.Sprintf("You're on a slow %s connection. Download later to save time and data.", name)
	}
	if minFileSize > 0 && req.TotalBytes >= minFileSize {
		return fmt.Sprintf("This file is large (%s). Download later to save time and data.", download_prompt.FormatBytes(req.TotalBytes))
	}
	return ""
}
