package schemas

import (
	"bytes"
	"encoding/json"

	"github.com/jonathan/resume-genie/internal/types"
)

// DecodeResumeRecord validates a resume document and decodes it into a normalized record.
// A whole optimization result is accepted too, in which case its "optimized" record is used.
func DecodeResumeRecord(document []byte) (types.ResumeRecord, error) {
	var wrapper struct {
		Optimized json.RawMessage `json:"optimized"`
	}
	if err := json.Unmarshal(document, &wrapper); err == nil {
		if inner := bytes.TrimSpace(wrapper.Optimized); len(inner) > 0 && !bytes.Equal(inner, []byte("null")) {
			document = inner
		}
	}

	if err := Validate(ResumeRecord, document); err != nil {
		return types.ResumeRecord{}, err
	}
	return types.DecodeResumeRecord(document)
}
