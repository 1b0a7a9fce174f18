// Copyright (c) 2026 Katalog. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// # Stored Documents

// refString decodes a reference field stored either as a plain string or in
// extended-JSON form ({"$oid": "..."}) as left behind by document imports.
type refString string

func (ref *refString) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*ref = refString(plain)
		return nil
	}

	var extended struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &extended); err != nil {
		return fmt.Errorf("reference field: %w", err)
	}
	*ref = refString(extended.OID)
	return nil
}

type memberDocument struct {
	ID            refString `json:"id"`
	InternalID    refString `json:"_id"`
	Name          string    `json:"name"`
	LocalizedName string    `json:"localizedName"`
	KoreanName    string    `json:"koreanName"`
	ImageURL      string    `json:"imageUrl"`
}

type groupDocument struct {
	ID            refString        `json:"id"`
	Name          string           `json:"name"`
	LocalizedName string           `json:"localizedName"`
	KoreanName    string           `json:"koreanName"`
	Company       string           `json:"company"`
	DebutYear     int              `json:"debutYear"`
	ImageURL      string           `json:"imageUrl"`
	Members       []memberDocument `json:"members"`
}

type photocardDocument struct {
	ID           refString     `json:"id"`
	MemberID     refString     `json:"memberId"`
	MemberName   string        `json:"memberName"`
	GroupID      refString     `json:"groupId"`
	GroupName    string        `json:"groupName"`
	Album        string        `json:"album"`
	Version      string        `json:"version"`
	Year         int           `json:"year"`
	Type         PhotocardType `json:"type"`
	ImageURL     string        `json:"imageUrl"`
	BackImageURL *string       `json:"backImageUrl"`
}

type submissionDocument struct {
	photocardDocument
	UserEmail   string           `json:"userEmail"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Status      SubmissionStatus `json:"status"`
	PhotocardID *refString       `json:"photocardId"`
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

/*
decodeGroup converts a stored group row into a [GroupRecord].

Description: Internal identity never leaks into the entity. A document
without a legacy id is given its storage id instead, and so is a member
without one.
*/
func decodeGroup(storageID string, body []byte) (GroupRecord, error) {
	var document groupDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return GroupRecord{}, fmt.Errorf("decode group %s: %w", storageID, err)
	}

	group := Group{
		ID:            firstNonEmpty(string(document.ID), storageID),
		Name:          document.Name,
		LocalizedName: firstNonEmpty(document.LocalizedName, document.KoreanName),
		Company:       document.Company,
		DebutYear:     document.DebutYear,
		ImageURL:      document.ImageURL,
		Members:       make([]Member, 0, len(document.Members)),
	}
	for _, member := range document.Members {
		group.Members = append(group.Members, Member{
			ID:            firstNonEmpty(string(member.ID), string(member.InternalID)),
			Name:          member.Name,
			LocalizedName: firstNonEmpty(member.LocalizedName, member.KoreanName),
			ImageURL:      member.ImageURL,
		})
	}

	return GroupRecord{Group: group, StorageID: storageID}, nil
}

func (document photocardDocument) entity(storageID string) Photocard {
	return Photocard{
		ID:           firstNonEmpty(string(document.ID), storageID),
		MemberID:     string(document.MemberID),
		MemberName:   document.MemberName,
		GroupID:      string(document.GroupID),
		GroupName:    document.GroupName,
		Album:        document.Album,
		Version:      document.Version,
		Year:         document.Year,
		Type:         document.Type,
		ImageURL:     document.ImageURL,
		BackImageURL: document.BackImageURL,
	}
}

func decodePhotocard(storageID string, body []byte) (Photocard, error) {
	var document photocardDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return Photocard{}, fmt.Errorf("decode photocard %s: %w", storageID, err)
	}
	return document.entity(storageID), nil
}

func decodeSubmission(storageID string, body []byte) (Submission, error) {
	var document submissionDocument
	if err := json.Unmarshal(body, &document); err != nil {
		return Submission{}, fmt.Errorf("decode submission %s: %w", storageID, err)
	}

	submission := Submission{
		Photocard:   document.photocardDocument.entity(storageID),
		UserEmail:   document.UserEmail,
		SubmittedAt: document.SubmittedAt,
		Status:      document.Status,
	}
	if document.PhotocardID != nil {
		photocardID := string(*document.PhotocardID)
		submission.PhotocardID = &photocardID
	}
	return submission, nil
}
