package endpoint

// message is the JSON envelope exchanged with websocket clients
type message struct {
	Type     string      `json:"type"`
	DataType string      `json:"dataType,omitempty"`
	Data     interface{} `json:"data"`
}
