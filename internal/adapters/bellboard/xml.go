package bellboard

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/okian/ringstats/internal/domain/model"
)

// Wire format of the export endpoint:
//
//	<performances>
//	  <performance id="...">
//	    <ringers><ringer bell="1">Name</ringer>...</ringers>
//	  </performance>
//	</performances>
type performancesXML struct {
	XMLName      xml.Name         `xml:"performances"`
	Performances []performanceXML `xml:"performance"`
}

type performanceXML struct {
	ID      string      `xml:"id,attr"`
	Ringers []ringerXML `xml:"ringers>ringer"`
}

type ringerXML struct {
	Name string `xml:",chardata"`
}

// decodeEvents parses an export document. An empty body or an empty root
// element yields no events and no error.
func decodeEvents(r io.Reader) ([]model.Event, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc performancesXML
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	events := make([]model.Event, 0, len(doc.Performances))
	for _, p := range doc.Performances {
		ev := model.Event{ID: p.ID, Performers: make([]string, 0, len(p.Ringers))}
		for _, r := range p.Ringers {
			ev.Performers = append(ev.Performers, strings.TrimSpace(r.Name))
		}
		events = append(events, ev)
	}
	return events, nil
}
