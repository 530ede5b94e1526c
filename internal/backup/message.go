// Package backup produces SMS Backup & Restore documents: the record
// types mirroring the application's XML attribute schema, the classifier
// that turns parsed events into records, the document writer/reader, and
// summary statistics.
//
// Field semantics were reverse-engineered from real exports; see
// https://synctech.com.au/sms-backup-restore/fields-in-xml-backup-files/
package backup

import "encoding/xml"

// Direction of a message; the value of the sms "type" and mms "msg_box"
// attributes. The format also defines 3 = draft, 4 = outbox, 5 = failed,
// 6 = queued, none of which occur in a chat export.
const (
	DirectionReceived = "1"
	DirectionSent     = "2"
)

// addr "type" attribute: 129 = BCC, 130 = CC, 151 = To, 137 = From.
const (
	addrTypeFrom = "137"
	addrTypeTo   = "151"
)

// charset values seen in real backups. Exports show both with no visible
// rule; 3 is used for addresses and 106 for text bodies, matching the
// majority of sampled files.
const (
	charsetASCII = "3"
	charsetUTF8  = "106"
)

// nullValue is the literal string the application writes for absent fields.
const nullValue = "null"

const (
	contentTypeMultipart = "application/vnd.wap.multipart.related"
	contentTypeSMIL      = "application/smil"
	contentTypeText      = "text/plain"
)

// m_type per the MMS spec: 128 for records carrying media, 151 for text.
const (
	msgTypeImage = "128"
	msgTypeText  = "151"
)

// The export does not carry these; fixed safe defaults for the restore app.
const (
	serviceCenter = "takeout2sms"
	dateSentMilli = "946684800000" // 2000-01-01 UTC, arbitrary placeholder
)

// SMIL presentation descriptors. Every multi-part record leads with one;
// real backups use several variants, and this generic pair restores fine.
const (
	smilImage = `<smil xmlns="http://www.w3.org/2001/SMIL20/Language"><head><layout/></head><body><par dur="8000ms"><img src="image"/></par></body></smil>`
	smilText  = `<smil xmlns="http://www.w3.org/2001/SMIL20/Language"><head><layout/></head><body></body></smil>`
)

// Record is one message element in the backup document.
type Record interface {
	record()
}

// Sms is a single-part text message element.
type Sms struct {
	XMLName       xml.Name `xml:"sms"`
	Protocol      string   `xml:"protocol,attr"`
	Address       string   `xml:"address,attr"`
	Date          string   `xml:"date,attr"` // unix milliseconds
	Type          string   `xml:"type,attr"` // DirectionReceived or DirectionSent
	Body          string   `xml:"body,attr"`
	DateSent      string   `xml:"date_sent,attr"`
	ServiceCenter string   `xml:"service_center,attr"`
	Subject       string   `xml:"subject,attr"`
	Toa           string   `xml:"toa,attr"`
	ScToa         string   `xml:"sc_toa,attr"`
	Read          string   `xml:"read,attr"`
	Status        string   `xml:"status,attr"`
	Locked        string   `xml:"locked,attr"`
	SubID         string   `xml:"sub_id,attr"`
}

func (Sms) record() {}

// Mms is a multi-part message element with explicit addressing.
type Mms struct {
	XMLName     xml.Name `xml:"mms"`
	Date        string   `xml:"date,attr"`
	ContentType string   `xml:"ct_t,attr"`
	MsgBox      string   `xml:"msg_box,attr"`
	ReadReport  string   `xml:"rr,attr"`
	Subject     string   `xml:"sub,attr"`
	ReadStatus  string   `xml:"read_status,attr"`
	Address     string   `xml:"address,attr"`
	MessageID   string   `xml:"m_id,attr"`
	Size        string   `xml:"m_size,attr"`
	MsgType     string   `xml:"m_type,attr"`
	Parts       Parts    `xml:"parts"`
	Addresses   Addrs    `xml:"addrs"`
}

func (Mms) record() {}

// Parts is the ordered content part list; the SMIL descriptor comes first.
type Parts struct {
	Part []Part `xml:"part"`
}

// Part is one content part element. Optional attributes are omitted when
// empty, matching the shapes the application itself writes.
type Part struct {
	Seq                string `xml:"seq,attr,omitempty"`
	ContentType        string `xml:"ct,attr"`
	Name               string `xml:"name,attr,omitempty"`
	Charset            string `xml:"chset,attr,omitempty"`
	ContentDisposition string `xml:"cd,attr,omitempty"`
	Filename           string `xml:"fn,attr,omitempty"`
	ContentID          string `xml:"cid,attr,omitempty"`
	ContentLocation    string `xml:"cl,attr,omitempty"`
	CttS               string `xml:"ctt_s,attr,omitempty"`
	CttT               string `xml:"ctt_t,attr,omitempty"`
	Text               string `xml:"text,attr,omitempty"`
	Data               string `xml:"data,attr,omitempty"` // base64 payload
}

// Addrs is the ordered address list of an Mms.
type Addrs struct {
	Addr []Addr `xml:"addr"`
}

// Addr is one participant address on an Mms record.
type Addr struct {
	Address string `xml:"address,attr"`
	Type    string `xml:"type,attr"` // addrTypeFrom or addrTypeTo
	Charset string `xml:"charset,attr"`
}
