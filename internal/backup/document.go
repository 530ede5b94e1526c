package backup

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/takeout2sms/internal/logging"
	"github.com/soyeahso/takeout2sms/internal/version"
)

// formatVersion is the SMS Backup & Restore release the output format was
// reverse-engineered from.
const formatVersion = "10.06.110"

// Document is a complete backup file: a generation identifier, a
// generation timestamp, and the records in emission order.
type Document struct {
	BackupSet  string
	BackupDate time.Time
	Records    []Record
}

// NewDocument stamps records with a fresh generation id and timestamp.
// These two fields are the only non-deterministic part of the output.
func NewDocument(records []Record) *Document {
	return &Document{
		BackupSet:  uuid.NewString(),
		BackupDate: time.Now().UTC(),
		Records:    records,
	}
}

// Write serializes the document. The restore app tolerates the lack of
// pretty-printing, so records are written on one line.
func (d *Document) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		"<!--File Created By SMS Backup & Restore v%s (takeout2sms %s) on %s-->\n",
		formatVersion, version.Version, d.BackupDate.Format(time.RFC3339)); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	root := xml.StartElement{
		Name: xml.Name{Local: "smses"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "count"}, Value: strconv.Itoa(len(d.Records))},
			{Name: xml.Name{Local: "backup_set"}, Value: d.BackupSet},
			{Name: xml.Name{Local: "backup_date"}, Value: strconv.FormatInt(d.BackupDate.UnixMilli(), 10)},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, rec := range d.Records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes the document to path, truncating any existing file.
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RawRecord is a passthrough element read from an existing backup file and
// re-emitted unchanged when merging.
type RawRecord struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []RawRecord
	Text     string
}

func (RawRecord) record() {}

// Attr returns the named attribute value, or "" when absent.
func (r RawRecord) Attr(name string) string {
	for _, a := range r.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Child returns the first child element with the given name.
func (r RawRecord) Child(name string) (RawRecord, bool) {
	for _, c := range r.Children {
		if c.Name.Local == name {
			return c, true
		}
	}
	return RawRecord{}, false
}

// MarshalXML re-emits the element exactly as read.
func (r RawRecord) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: r.Name.Local}, Attr: r.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if r.Text != "" {
		if err := e.EncodeToken(xml.CharData(r.Text)); err != nil {
			return err
		}
	}
	for _, c := range r.Children {
		if err := c.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML captures the element's attributes and children verbatim.
func (r *RawRecord) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	r.Name = start.Name
	r.Attrs = start.Attr
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child RawRecord
			if err := child.UnmarshalXML(dec, t); err != nil {
				return err
			}
			r.Children = append(r.Children, child)
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				r.Text += text
			}
		case xml.EndElement:
			return nil
		}
	}
}

var commentVersionPattern = regexp.MustCompile(`v(\d+)\.(\d+)\.(\d+)`)

// ReadDocument parses a previously produced backup file into passthrough
// records for merging. The creator comment is checked, and a version drift
// from the reverse-engineered release only warns.
func ReadDocument(path string, log *logging.Logger) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	lines := strings.SplitN(string(data), "\n", 3)
	if len(lines) < 2 || !strings.Contains(lines[1], "File Created By") {
		return nil, fmt.Errorf("%s does not look like an SMS Backup & Restore file: missing creator comment", path)
	}
	if m := commentVersionPattern.FindStringSubmatch(lines[1]); m == nil || m[1]+"."+m[2] != "10.06" {
		log.Warn().
			Str("path", path).
			Msg("backup file was written by an untested SMS Backup & Restore version; merging anyway")
	}

	var doc struct {
		XMLName xml.Name    `xml:"smses"`
		Records []RawRecord `xml:",any"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing backup file: %w", err)
	}

	records := make([]Record, len(doc.Records))
	for i, r := range doc.Records {
		records[i] = r
	}
	log.Info().Str("path", path).Int("messages", len(records)).Msg("read existing backup")
	return records, nil
}
