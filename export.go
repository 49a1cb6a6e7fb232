package itmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alnah/go-itmd/internal/icsexport"
	"github.com/alnah/go-itmd/internal/yamlutil"
)

// JSON encodes the document. Node objects always start with their "type"
// member.
func (d *Document) JSON(indent bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(d, "", "  ")
	} else {
		out, err = json.Marshal(d)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return out, nil
}

// YAML encodes the document with the same shape and key order as JSON.
func (d *Document) YAML() ([]byte, error) {
	data, err := d.JSON(false)
	if err != nil {
		return nil, err
	}
	out, err := yamlutil.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return out, nil
}

// ICSOptions tunes the iCalendar export.
type ICSOptions struct {
	// Name is the calendar name. Defaults to the frontmatter title.
	Name string
	// Stamp is written as DTSTAMP. When zero, each event's start is used so
	// that output is reproducible.
	Stamp time.Time
}

// ICS exports the events that have a resolved start instant as an iCalendar
// feed.
func (d *Document) ICS(opts ICSOptions) []byte {
	name := opts.Name
	if name == "" {
		name = d.Frontmatter.Title
	}
	return icsexport.Export(d.Nodes, icsexport.Options{Name: name, Stamp: opts.Stamp})
}
