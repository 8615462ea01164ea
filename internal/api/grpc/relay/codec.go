package relay

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/ergomon/internal/domain/alert"
)

// errEventRequired is returned when a nil message is decoded.
var errEventRequired = errors.New("event is required")

// Struct field names.
const (
	fieldID        = "id"
	fieldCategory  = "category"
	fieldMessage   = "message"
	fieldSeverity  = "severity"
	fieldTimestamp = "timestamp"
	fieldSource    = "source"
	fieldHostname  = "hostname"
	fieldUsername  = "username"
)

// ToStruct encodes an event as a Struct message.
func ToStruct(event *domain.Event) (*structpb.Struct, error) {
	if event == nil {
		return nil, errEventRequired
	}

	fields := map[string]any{
		fieldID:        event.ID.String(),
		fieldCategory:  string(event.Category),
		fieldMessage:   event.Message,
		fieldSeverity:  string(event.Severity),
		fieldTimestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
	}

	if event.Source != nil {
		fields[fieldSource] = map[string]any{
			fieldHostname: event.Source.Hostname,
			fieldUsername: event.Source.Username,
		}
	}

	message, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	return message, nil
}

// FromStruct decodes an event from a Struct message.
func FromStruct(message *structpb.Struct) (*domain.Event, error) {
	if message == nil {
		return nil, errEventRequired
	}

	fields := message.GetFields()

	id, err := uuid.Parse(fields[fieldID].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode event id: %w", err)
	}

	category, err := domain.ParseCategory(fields[fieldCategory].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	severity, err := domain.ParseSeverity(fields[fieldSeverity].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, fields[fieldTimestamp].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode event timestamp: %w", err)
	}

	event := &domain.Event{
		ID:        id,
		Category:  category,
		Message:   fields[fieldMessage].GetStringValue(),
		Severity:  severity,
		Timestamp: timestamp,
	}

	if source := fields[fieldSource].GetStructValue(); source != nil {
		event.Source = &domain.Actor{
			Hostname: source.GetFields()[fieldHostname].GetStringValue(),
			Username: source.GetFields()[fieldUsername].GetStringValue(),
		}
	}

	return event, nil
}

// ToList encodes events as a ListValue of Structs.
func ToList(events []*domain.Event) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(events))}

	for _, event := range events {
		message, err := ToStruct(event)
		if err != nil {
			return nil, err
		}

		list.Values = append(list.Values, structpb.NewStructValue(message))
	}

	return list, nil
}

// FromList decodes a ListValue of Structs.
func FromList(list *structpb.ListValue) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0, len(list.GetValues()))

	for _, value := range list.GetValues() {
		event, err := FromStruct(value.GetStructValue())
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}
