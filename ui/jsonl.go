package ui

import (
	"io"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sniffview/merge"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonFrame struct {
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
	Position float64   `json:"position"`
	Records  int       `json:"records"`
	Padding  int       `json:"padding"`
	Digest   string    `json:"digest"`
	Rows     []jsonRow `json:"rows"`
}

// jsonRow carries one aligned row; padding cells are null.
type jsonRow struct {
	Timestamp int64   `json:"ts"`
	In        *string `json:"in"`
	Out       *string `json:"out"`
}

// JSONLines writes one JSON object per frame.
type JSONLines struct {
	mu  sync.Mutex
	enc *jsoniter.Encoder
	err error
}

var _ Surface = (*JSONLines)(nil)

func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: jsonAPI.NewEncoder(w)}
}

func (j *JSONLines) Publish(f merge.Frame) {
	out := jsonFrame{
		Seq:      f.Seq,
		At:       f.At,
		Position: f.Position,
		Records:  f.Records,
		Padding:  f.Padding,
		Digest:   strconv.FormatUint(f.Digest, 16),
		Rows:     make([]jsonRow, f.Rows()),
	}
	for i := range f.In {
		row := &out.Rows[i]
		if !f.In[i].Pad {
			row.In = &f.In[i].Text
			row.Timestamp = f.In[i].Timestamp
		}
		if !f.Out[i].Pad {
			row.Out = &f.Out[i].Text
			row.Timestamp = f.Out[i].Timestamp
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(out); err != nil && j.err == nil {
		j.err = err
	}
}

// Err returns the first encode or write failure.
func (j *JSONLines) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *JSONLines) TopFraction() float64 { return 0 }
func (j *JSONLines) WaitReady() {}
func (j *JSONLines) Stop() {}
func (j *JSONLines) Done() <-chan struct{} { return nil }
func (j *JSONLines) SetStats(lines []string) {}
func (j *JSONLines) SystemWriter() io.Writer { return nil }
