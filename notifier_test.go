package whloader_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.nownabe.dev/whloader"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(f roundTripperFunc) *http.Client {
	return &http.Client{Transport: f}
}

func TestSlackNotifier(t *testing.T) {
	var text string

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf(`Authorization should be "Bearer token", but "%s"`, got)
		}

		var m struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&m); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		text = m.Text

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"ok":true}`)),
			Header:     http.Header{},
		}, nil
	})

	n := &whloader.SlackNotifier{
		Channel:    "#channel",
		Token:      "token",
		IconEmoji:  ":emoji:",
		Username:   "username",
		HTTPClient: client,
	}

	r := &whloader.Result{
		Handler: &whloader.Handler{
			Name:        "myhandler",
			Destination: whloader.Config{Database: "DB", Schema: "WATER_QUALITY", Table: "LAB_RESULTS"},
		},
		LoadResult: &whloader.LoadResult{Loaded: 10, Skipped: 2},
	}

	if err := n.Notify(context.Background(), r); err != nil {
		t.Errorf("unexpected slack.Notify error: %s", err)
	}

	want := "myhandler handler loaded 10 rows into DB.WATER_QUALITY.LAB_RESULTS but skipped 2 rows"
	if text != want {
		t.Errorf(`text should be "%s", but "%s"`, want, text)
	}
}

func TestSlackNotifier_NotOK(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"ok":false,"error":"channel_not_found"}`)),
			Header:     http.Header{},
		}, nil
	})

	n := &whloader.SlackNotifier{Channel: "#nowhere", Token: "token", HTTPClient: client}

	r := &whloader.Result{
		Handler: &whloader.Handler{Name: "myhandler"},
		Error:   errors.New("boom"),
	}

	err := n.Notify(context.Background(), r)
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected channel_not_found error, but %v", err)
	}
}

func TestResult_Text(t *testing.T) {
	h := &whloader.Handler{
		Name:        "lab",
		Destination: whloader.Config{Database: "DB", Schema: "S", Table: "T"},
	}

	cases := []struct {
		result *whloader.Result
		want   string
	}{
		{
			result: &whloader.Result{Handler: h, LoadResult: &whloader.LoadResult{Loaded: 3}},
			want:   "lab handler successfully loaded 3 rows into DB.S.T",
		},
		{
			result: &whloader.Result{Handler: h, Error: errors.New("GET x: 404 Not Found")},
			want:   "lab handler failed to load DB.S.T: GET x: 404 Not Found",
		},
	}

	for _, c := range cases {
		if got := c.result.Text(); got != c.want {
			t.Errorf(`Text() should be "%s", but "%s"`, c.want, got)
		}
	}
}
