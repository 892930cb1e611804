package jsonrpc

import (
	"bytes"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is a jsonrpc request
type Request struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      uint64              `json:"id"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// Message is any frame the node sends: a response carries an id,
// a notification carries a method and params
type Message struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      uint64              `json:"id,omitempty"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject        `json:"error,omitempty"`
	Method  string              `json:"method,omitempty"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

func (m *Message) isNotification() bool {
	return m.ID == 0 && m.Method != ""
}

// SubscriptionParams are the params of a subscription notification
type SubscriptionParams struct {
	Subscription jsoniter.RawMessage `json:"subscription"`
	Result       jsoniter.RawMessage `json:"result"`
}

// ErrorObject is a jsonrpc error
type ErrorObject struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// Error implements error interface
func (e *ErrorObject) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%d: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%d: %s: %s", e.Code, e.Message, string(e.Data))
}

func (e *ErrorObject) ErrorCode() int {
	return e.Code
}

// subscriptionID normalizes an id sent as a JSON string or number
func subscriptionID(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '"' {
		id, err := strconv.Unquote(string(raw))
		if err != nil {
			return "", fmt.Errorf("invalid subscription id %s: %w", string(raw), err)
		}

		return id, nil
	}

	if _, err := strconv.ParseUint(string(raw), 10, 64); err != nil {
		return "", fmt.Errorf("invalid subscription id %s", string(raw))
	}

	return string(raw), nil
}
