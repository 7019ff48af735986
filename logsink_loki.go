package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const lokiTimeout = 5 * time.Second

// make sure it implements LogSink
var _ LogSink = (*LokiSink)(nil)

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// LokiSink pushes streams to a Loki push endpoint as JSON. Each push is a
// single attempt; a failure loses the batch.
type LokiSink struct {
	endpoint string
	client   *http.Client
}

func NewLokiSink(endpoint string) *LokiSink {
	return &LokiSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: lokiTimeout},
	}
}

func encodeLokiPush(streams []LogStream) lokiPush {
	push := lokiPush{Streams: make([]lokiStream, 0, len(streams))}
	for _, s := range streams {
		ls := lokiStream{
			Stream: s.Labels.Map(),
			Values: make([][2]string, 0, len(s.Values)),
		}
		for _, v := range s.Values {
			ls.Values = append(ls.Values, [2]string{strconv.FormatInt(v.Timestamp.UnixNano(), 10), v.Message})
		}
		push.Streams = append(push.Streams, ls)
	}
	return push
}

func (l *LokiSink) Push(ctx context.Context, streams []LogStream) error {
	body, err := json.Marshal(encodeLokiPush(streams))
	if err != nil {
		return fmt.Errorf("%w: encoding streams: %v", ErrLogDelivery, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogDelivery, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: loki returned status %d", ErrLogDelivery, resp.StatusCode)
	}
	return nil
}

func (l *LokiSink) Close(ctx context.Context) error {
	l.client.CloseIdleConnections()
	return nil
}
