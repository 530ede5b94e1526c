package takeout

import (
	"archive/zip"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/takeout2sms/internal/domain"
	"github.com/soyeahso/takeout2sms/internal/logging"
)

// hangoutsDataPath is the fixed location of the chat export inside a
// Google Takeout zip.
const hangoutsDataPath = "Takeout/Hangouts/Hangouts.json"

// OpenArchive reads the Hangouts JSON document out of a Takeout zip file.
func OpenArchive(path string, log *logging.Logger) (*RawArchive, error) {
	log.Info().Str("path", path).Str("entry", hangoutsDataPath).Msg("reading takeout archive")

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening takeout archive: %w", err)
	}
	defer zr.Close()

	f, err := zr.Open(hangoutsDataPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s in archive: %w", hangoutsDataPath, err)
	}
	defer f.Close()

	var arch RawArchive
	if err := json.NewDecoder(f).Decode(&arch); err != nil {
		return nil, domain.Schemaf("decoding %s: %v", hangoutsDataPath, err)
	}

	log.Info().Int("conversations", len(arch.Conversations)).Msg("archive loaded")
	return &arch, nil
}
