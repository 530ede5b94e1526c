package backup

import (
	"github.com/soyeahso/takeout2sms/internal/domain"
)

// Stats summarizes a set of backup records.
type Stats struct {
	Messages    int
	Sms         int
	Mms         int
	Sent        int
	Received    int
	Contacts    int
	Diagnostics map[string]int // diagnostic kind -> count
}

// CollectStats counts messages, directions, and distinct contact
// addresses. Sms bodies carrying a diagnostic marker are counted with the
// multi-part messages they stand in for, keyed by diagnostic kind.
func CollectStats(records []Record) (Stats, error) {
	st := Stats{Diagnostics: map[string]int{}}
	contacts := map[string]struct{}{}

	for _, rec := range records {
		st.Messages++

		var direction string
		switch m := rec.(type) {
		case Sms:
			contacts[m.Address] = struct{}{}
			direction = m.Type
			if kind, _, ok := domain.ParseDiagnostic(m.Body); ok {
				st.Mms++
				st.Diagnostics[kind]++
			} else {
				st.Sms++
			}
		case Mms:
			st.Mms++
			direction = m.MsgBox
			for _, a := range m.Addresses.Addr {
				contacts[a.Address] = struct{}{}
			}
		case RawRecord:
			var err error
			direction, err = countRaw(m, &st, contacts)
			if err != nil {
				return Stats{}, err
			}
		default:
			return Stats{}, domain.Schemaf("unknown record kind %T", rec)
		}

		switch direction {
		case DirectionReceived:
			st.Received++
		case DirectionSent:
			st.Sent++
		default:
			return Stats{}, domain.Schemaf("unknown message direction %q", direction)
		}
	}

	st.Contacts = len(contacts)
	return st, nil
}

// countRaw applies the same counting to merged passthrough records.
func countRaw(r RawRecord, st *Stats, contacts map[string]struct{}) (string, error) {
	switch r.Name.Local {
	case "sms":
		contacts[r.Attr("address")] = struct{}{}
		if kind, _, ok := domain.ParseDiagnostic(r.Attr("body")); ok {
			st.Mms++
			st.Diagnostics[kind]++
		} else {
			st.Sms++
		}
		return r.Attr("type"), nil
	case "mms":
		st.Mms++
		if addrs, ok := r.Child("addrs"); ok {
			for _, a := range addrs.Children {
				contacts[a.Attr("address")] = struct{}{}
			}
		}
		return r.Attr("msg_box"), nil
	default:
		return "", domain.Schemaf("unknown record element %q", r.Name.Local)
	}
}
