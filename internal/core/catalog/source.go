// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// # Static Source

// Dataset is a decoded and validated static catalog document.
type Dataset struct {
	Groups     []Group
	Photocards []Photocard
}

// Source yields the raw static catalog document.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type embeddedSource struct{}

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(embeddedCatalog)), nil
}

type fileSource struct{ path string }

func (source fileSource) Name() string { return source.path }

func (source fileSource) Open() (io.ReadCloser, error) {
	return os.Open(source.path)
}

// EmbeddedSource returns the catalog document compiled into the binary.
func EmbeddedSource() Source { return embeddedSource{} }

// FileSource reads the catalog document from path on every open.
func FileSource(path string) Source { return fileSource{path: path} }

// SourceFromPath picks the file source when path is set, else the embedded one.
func SourceFromPath(path string) Source {
	if strings.TrimSpace(path) == "" {
		return EmbeddedSource()
	}
	return FileSource(path)
}

// sourceMember accepts the older "koreanName" key alongside "localizedName".
type sourceMember struct {
	Member
	KoreanName string `json:"koreanName"`
}

type sourceGroup struct {
	Group
	KoreanName string         `json:"koreanName"`
	Members    []sourceMember `json:"members"`
}

type sourceDocument struct {
	Groups     []sourceGroup `json:"groups"`
	Photocards []Photocard   `json:"photocards"`
}

/*
LoadDataset opens, decodes and validates a static source.

Returns:
  - *Dataset: Fully validated records, or nil on any failure
  - error: I/O, decode, or [*ValidationError] failures
*/
func LoadDataset(source Source) (*Dataset, error) {
	reader, err := source.Open()
	if err != nil {
		return nil, fmt.Errorf("open catalog source %s: %w", source.Name(), err)
	}
	defer reader.Close()

	dataset, err := DecodeDataset(reader)
	if err != nil {
		return nil, fmt.Errorf("catalog source %s: %w", source.Name(), err)
	}
	return dataset, nil
}

// DecodeDataset parses a catalog document and validates every record.
func DecodeDataset(reader io.Reader) (*Dataset, error) {
	var document sourceDocument
	if err := json.NewDecoder(reader).Decode(&document); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	dataset := &Dataset{
		Groups:     make([]Group, 0, len(document.Groups)),
		Photocards: document.Photocards,
	}
	if dataset.Photocards == nil {
		dataset.Photocards = []Photocard{}
	}

	for _, raw := range document.Groups {
		group := raw.Group
		if group.LocalizedName == "" {
			group.LocalizedName = raw.KoreanName
		}
		group.Members = make([]Member, 0, len(raw.Members))
		for _, rawMember := range raw.Members {
			member := rawMember.Member
			if member.LocalizedName == "" {
				member.LocalizedName = rawMember.KoreanName
			}
			group.Members = append(group.Members, member)
		}
		dataset.Groups = append(dataset.Groups, group)
	}

	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	return dataset, nil
}

// Validate checks identity and enum invariants across the whole dataset and
// returns the first violation.
func (dataset *Dataset) Validate() error {
	groupIDs := make(map[string]struct{}, len(dataset.Groups))
	for i, group := range dataset.Groups {
		if strings.TrimSpace(group.ID) == "" {
			return &ValidationError{Entity: "group", Index: i, Field: FieldID, Reason: "is required"}
		}
		if strings.TrimSpace(group.Name) == "" {
			return &ValidationError{Entity: "group", Index: i, Field: FieldName, Reason: "is required"}
		}
		if _, dup := groupIDs[group.ID]; dup {
			return &ValidationError{Entity: "group", Index: i, Field: FieldID, Reason: "is duplicated"}
		}
		groupIDs[group.ID] = struct{}{}

		memberIDs := make(map[string]struct{}, len(group.Members))
		for j, member := range group.Members {
			if strings.TrimSpace(member.ID) == "" {
				return &ValidationError{Entity: "member of " + group.ID, Index: j, Field: FieldID, Reason: "is required"}
			}
			if _, dup := memberIDs[member.ID]; dup {
				return &ValidationError{Entity: "member of " + group.ID, Index: j, Field: FieldID, Reason: "is duplicated"}
			}
			memberIDs[member.ID] = struct{}{}
		}
	}

	photocardIDs := make(map[string]struct{}, len(dataset.Photocards))
	for i, card := range dataset.Photocards {
		switch {
		case strings.TrimSpace(card.ID) == "":
			return &ValidationError{Entity: "photocard", Index: i, Field: FieldID, Reason: "is required"}
		case strings.TrimSpace(card.GroupID) == "":
			return &ValidationError{Entity: "photocard", Index: i, Field: FieldGroupID, Reason: "is required"}
		case strings.TrimSpace(card.MemberID) == "":
			return &ValidationError{Entity: "photocard", Index: i, Field: FieldMemberID, Reason: "is required"}
		case !card.Type.Valid():
			return &ValidationError{Entity: "photocard", Index: i, Field: FieldType, Reason: fmt.Sprintf("must be one of %v", PhotocardTypes)}
		}
		if _, dup := photocardIDs[card.ID]; dup {
			return &ValidationError{Entity: "photocard", Index: i, Field: FieldID, Reason: "is duplicated"}
		}
		photocardIDs[card.ID] = struct{}{}
	}

	return nil
}
