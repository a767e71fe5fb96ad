package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Records are stored as protobuf Struct messages so they stay readable by any
// protobuf tooling without generated types.

func fromDiskMessage(message DiskMessage) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":                message.ID.String(),
		"text":              message.Text,
		"authorId":          message.AuthorID,
		"authorDisplayName": message.AuthorDisplayName,
		"authorPhotoUrl":    message.AuthorPhotoURL,
		"authorEmail":       message.AuthorEmail,
		"createdAt":         message.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func toDiskMessage(s *structpb.Struct) (DiskMessage, error) {
	fields := s.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return DiskMessage{}, fmt.Errorf("invalid message id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"].GetStringValue())
	if err != nil {
		return DiskMessage{}, fmt.Errorf("invalid message timestamp: %w", err)
	}
	return DiskMessage{
		ID:                id,
		Text:              fields["text"].GetStringValue(),
		AuthorID:          fields["authorId"].GetStringValue(),
		AuthorDisplayName: fields["authorDisplayName"].GetStringValue(),
		AuthorPhotoURL:    fields["authorPhotoUrl"].GetStringValue(),
		AuthorEmail:       fields["authorEmail"].GetStringValue(),
		CreatedAt:         createdAt.UTC(),
	}, nil
}

func marshalMessage(message DiskMessage) ([]byte, error) {
	s, err := fromDiskMessage(message)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func unmarshalMessage(b []byte) (DiskMessage, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return DiskMessage{}, err
	}
	return toDiskMessage(&s)
}

func marshalDeadLetter(d DeadLetter) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"messageId": d.MessageID.String(),
		"attempts":  d.Attempts,
		"reason":    d.Reason,
		"at":        d.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func unmarshalDeadLetter(b []byte) (DeadLetter, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return DeadLetter{}, err
	}
	fields := s.GetFields()
	id, err := uuid.Parse(fields["messageId"].GetStringValue())
	if err != nil {
		return DeadLetter{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return DeadLetter{}, err
	}
	return DeadLetter{
		MessageID: id,
		Attempts:  int(fields["attempts"].GetNumberValue()),
		Reason:    fields["reason"].GetStringValue(),
		At:        at.UTC(),
	}, nil
}

func marshalUser(u User) ([]byte, error) {
	roles := make([]any, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r)
	}
	s, err := structpb.NewStruct(map[string]any{
		"id":           u.ID,
		"email":        u.Email,
		"displayName":  u.DisplayName,
		"photoUrl":     u.PhotoURL,
		"passwordHash": u.PasswordHash,
		"roles":        roles,
		"createdAt":    u.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func unmarshalUser(b []byte) (User, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return User{}, err
	}
	fields := s.GetFields()
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"].GetStringValue())
	if err != nil {
		return User{}, err
	}
	var roles []string
	for _, v := range fields["roles"].GetListValue().GetValues() {
		roles = append(roles, v.GetStringValue())
	}
	return User{
		ID:           fields["id"].GetStringValue(),
		Email:        fields["email"].GetStringValue(),
		DisplayName:  fields["displayName"].GetStringValue(),
		PhotoURL:     fields["photoUrl"].GetStringValue(),
		PasswordHash: fields["passwordHash"].GetStringValue(),
		Roles:        roles,
		CreatedAt:    createdAt.UTC(),
	}, nil
}
