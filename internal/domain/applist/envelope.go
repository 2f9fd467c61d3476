package applist

import (
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/switcher/internal/domain/migration"
	"github.com/GriffinCanCode/switcher/internal/shared/utils"
)

// Envelope is the wire form of an event, shared by the HTTP API, the
// websocket channel and replay scripts. Only the fields the event type
// uses are set.
type Envelope struct {
	Type            Kind                `json:"type" yaml:"type" toml:"type"`
	AppName         string              `json:"appName,omitempty" yaml:"appName,omitempty" toml:"appName,omitempty"`
	Value           string              `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	SourceName      string              `json:"sourceName,omitempty" yaml:"sourceName,omitempty" toml:"sourceName,omitempty"`
	DestinationName string              `json:"destinationName,omitempty" yaml:"destinationName,omitempty" toml:"destinationName,omitempty"`
	Names           []string            `json:"names,omitempty" yaml:"names,omitempty" toml:"names,omitempty"`
	Height          int                 `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	At              int64               `json:"at,omitempty" yaml:"at,omitempty" toml:"at,omitempty"` // unix ms
	Storage         *migration.Document `json:"storage,omitempty" yaml:"storage,omitempty" toml:"storage,omitempty"`
}

// Event decodes and validates the envelope into a typed event
func (env Envelope) Event() (Event, error) {
	switch env.Type {
	case KindSetupCompleted:
		return SetupCompleted{}, nil
	case KindResetConfirmed:
		return ResetConfirmed{}, nil
	case KindStartupLoaded:
		if env.Storage == nil {
			return nil, invalid(env.Type, errors.New("storage is required"))
		}
		return StartupLoaded{Document: *env.Storage}, nil
	case KindInstalledAppsScanned:
		if err := utils.ValidateNames(env.Names); err != nil {
			return nil, invalid(env.Type, err)
		}
		return InstalledAppsScanned{Names: env.Names}, nil
	case KindHotCodeUpdated:
		if err := utils.ValidateAppName(env.AppName, "appName"); err != nil {
			return nil, invalid(env.Type, err)
		}
		if err := utils.ValidateHotCode(env.Value); err != nil {
			return nil, invalid(env.Type, err)
		}
		return HotCodeUpdated{AppName: env.AppName, Value: env.Value}, nil
	case KindAppRemoved:
		if err := utils.ValidateAppName(env.AppName, "appName"); err != nil {
			return nil, invalid(env.Type, err)
		}
		return AppRemoved{AppName: env.AppName}, nil
	case KindAppRestored:
		if err := utils.ValidateAppName(env.AppName, "appName"); err != nil {
			return nil, invalid(env.Type, err)
		}
		return AppRestored{AppName: env.AppName}, nil
	case KindAppReordered:
		if err := utils.ValidateAppName(env.SourceName, "sourceName"); err != nil {
			return nil, invalid(env.Type, err)
		}
		if err := utils.ValidateAppName(env.DestinationName, "destinationName"); err != nil {
			return nil, invalid(env.Type, err)
		}
		return AppReordered{SourceName: env.SourceName, DestinationName: env.DestinationName}, nil
	case KindDonateClicked:
		return DonateClicked{}, nil
	case KindMaybeLaterClicked:
		if env.At < 0 {
			return nil, invalid(env.Type, errors.New("at must not be negative"))
		}
		var at time.Time
		if env.At != 0 {
			at = time.UnixMilli(env.At)
		}
		return MaybeLaterClicked{At: at}, nil
	case KindPickerResized:
		if env.Height <= 0 {
			return nil, invalid(env.Type, errors.New("height must be positive"))
		}
		return PickerResized{Height: env.Height}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

func invalid(kind Kind, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidEvent, kind, err)
}

// NewEnvelope encodes event for the wire
func NewEnvelope(event Event) (Envelope, error) {
	switch e := event.(type) {
	case SetupCompleted, ResetConfirmed, DonateClicked:
		return Envelope{Type: e.Kind()}, nil
	case StartupLoaded:
		doc := e.Document
		return Envelope{Type: e.Kind(), Storage: &doc}, nil
	case InstalledAppsScanned:
		return Envelope{Type: e.Kind(), Names: e.Names}, nil
	case HotCodeUpdated:
		return Envelope{Type: e.Kind(), AppName: e.AppName, Value: e.Value}, nil
	case AppRemoved:
		return Envelope{Type: e.Kind(), AppName: e.AppName}, nil
	case AppRestored:
		return Envelope{Type: e.Kind(), AppName: e.AppName}, nil
	case AppReordered:
		return Envelope{Type: e.Kind(), SourceName: e.SourceName, DestinationName: e.DestinationName}, nil
	case MaybeLaterClicked:
		env := Envelope{Type: e.Kind()}
		if !e.At.IsZero() {
			env.At = e.At.UnixMilli()
		}
		return env, nil
	case PickerResized:
		return Envelope{Type: e.Kind(), Height: e.Height}, nil
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
}
