package domain

import (
	"testing"
)

// FuzzParseSubmissionID checks that parsing never panics on arbitrary input
// and that accepted values round-trip through String.
func FuzzParseSubmissionID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE deal_submissions;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParseSubmissionID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseSubmissionID(parsed.String())
		if err != nil {
			t.Errorf("accepted id failed round-trip: %v", err)
		}
		if roundTrip != parsed {
			t.Error("round-trip changed id value")
		}
	})
}

// FuzzParseAllIDs checks that every id type applies the same validation.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errSub := ParseSubmissionID(input)
		_, errFb := ParseFeedbackID(input)
		_, errCo := ParseCompanyID(input)
		_, errUser := ParseUserID(input)
		_, errFile := ParseFileID(input)

		accepted := errSub == nil
		for _, err := range []error{errFb, errCo, errUser, errFile} {
			if (err == nil) != accepted {
				t.Error("id types disagree on input validity")
			}
		}
	})
}
