package overpass

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// SaveResponse writes a query result to disk so the fetch and run commands
// can hand off without re-querying.
func SaveResponse(resp *Response, path string) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return eris.Wrap(err, "overpass: marshal response")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "overpass: write %s", path)
	}
	return nil
}

// LoadResponse reads a previously saved query result.
func LoadResponse(path string) (*Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: read %s", path)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrapf(err, "overpass: parse %s", path)
	}
	return &resp, nil
}
