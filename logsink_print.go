package main

import (
	"context"
	"fmt"
	"io"
)

// make sure it implements LogSink
var _ LogSink = (*LogSinkPrint)(nil)

type LogSinkPrint struct {
	w io.Writer
}

func NewLogSinkPrint(w io.Writer) *LogSinkPrint {
	return &LogSinkPrint{w: w}
}

func (p *LogSinkPrint) Push(ctx context.Context, streams []LogStream) error {
	for _, s := range streams {
		for _, v := range s.Values {
			_, err := fmt.Fprintf(p.w, "%s %-5s %s [%s] %s\n",
				v.Timestamp.Format("15:04:05.000"), s.Labels.Level, s.Labels.Service, s.Labels.Environment, v.Message)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *LogSinkPrint) Close(ctx context.Context) error {
	return nil
}
