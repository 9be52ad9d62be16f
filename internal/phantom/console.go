package phantom

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
)

// PhantomJS implements the legacy Console domain only. Its messages are reshaped into
// Runtime.consoleAPICalled notifications so the bridge can report them like any other console output.
type consoleTranslator struct {
	// The most recent translated message, re-reported when PhantomJS says it was repeated.
	latest *cdp.ConsoleAPICalledEvent
}

func newConsoleTranslator() *consoleTranslator {
	return &consoleTranslator{}
}

// messageAdded translates the parameters of a Console.messageAdded notification.
func (ct *consoleTranslator) messageAdded(params json.RawMessage) (*cdp.ConsoleAPICalledEvent, error) {
	message := gjson.GetBytes(params, "message")
	if !message.IsObject() {
		return nil, fmt.Errorf("%w: console message without a message object", ErrProtocolAnomaly)
	}

	translated, err := translateConsoleMessage([]byte(message.Raw))
	if err != nil {
		return nil, err
	}

	var ev cdp.ConsoleAPICalledEvent
	if unmarshalErr := json.Unmarshal(translated, &ev); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocolAnomaly, unmarshalErr)
	}

	ct.latest = &ev
	return &ev, nil
}

// repeated returns the message to report for a Console.messageRepeatCountUpdated notification.
func (ct *consoleTranslator) repeated() (*cdp.ConsoleAPICalledEvent, bool) {
	if ct.latest == nil {
		return nil, false
	}
	return ct.latest, true
}

// translateConsoleMessage renames "parameters" to "args" (or builds a single string argument from the text),
// and reports errors and warnings with the level as the message type.
func translateConsoleMessage(message []byte) ([]byte, error) {
	var err error

	if params := gjson.GetBytes(message, "parameters"); params.IsArray() {
		message, err = sjson.SetRawBytes(message, "args", []byte(params.Raw))
		if err == nil {
			message, err = sjson.DeleteBytes(message, "parameters")
		}
	} else {
		message, err = sjson.SetBytes(message, "args", []map[string]string{
			{"type": "string", "value": gjson.GetBytes(message, "text").String()},
		})
	}
	if err != nil {
		return nil, fmt.Errorf("could not translate console message: %w", err)
	}

	switch level := gjson.GetBytes(message, "level").String(); level {
	case "error", "warning":
		message, err = sjson.SetBytes(message, "type", level)
	default:
		if !gjson.GetBytes(message, "type").Exists() {
			message, err = sjson.SetBytes(message, "type", "log")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not translate console message: %w", err)
	}

	return message, nil
}
