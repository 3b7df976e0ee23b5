package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/adamwoolhether/rategate/client"
	"github.com/adamwoolhether/rategate/gate"
)

func ExampleBuild() {
	c, err := client.Build(
		client.WithTimeout(10*time.Second),
		client.WithUserAgent("example/1.0"),
		client.WithThrottle(30, time.Minute),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("limit:", c.Gate().Limit(), "window:", c.Gate().Window())
	// Output: limit: 30 window: 1m0s
}

func ExampleURL() {
	u := client.URL("https", "example.com", "/api/v1/documents",
		client.WithPort(8443),
		client.WithQueryStrings(map[string]string{"draft": "true"}),
	)

	fmt.Println(u.String())
	// Output: https://example.com:8443/api/v1/documents?draft=true
}

func ExampleRequest() {
	type document struct {
		Title string `json:"title"`
	}

	u := client.URL("https", "example.com", "/documents")

	req, err := client.Request(context.Background(), u, http.MethodPost,
		client.WithPayload(document{Title: "quarterly report"}),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(req.Method, req.URL.Path, req.Header.Get("Content-Type"))
	// Output: POST /documents application/json
}

func ExampleClient_Do() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"doc-1"}`)
	}))
	defer ts.Close()

	c, err := client.Build(client.WithThrottle(2, time.Second))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	u, _ := url.Parse(ts.URL)
	req, _ := client.Request(context.Background(), u, http.MethodPost)

	var resp struct{ ID string }
	if err := c.Do(req, http.StatusCreated, client.WithDestination(&resp)); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(resp.ID, c.Gate().Stats().Used)
	// Output: doc-1 1
}

func ExampleWithGate() {
	g, err := gate.New(10, time.Minute)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	a, _ := client.Build(client.WithGate(g))
	b, _ := client.Build(client.WithGate(g), client.WithUserAgent("reports/1.0"))

	fmt.Println(a.Gate() == b.Gate())
	// Output: true
}

func ExampleWithRequestID() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, len(r.Header.Get("X-Request-ID")))
	}))
	defer ts.Close()

	c, _ := client.Build(client.WithRequestID())

	u, _ := url.Parse(ts.URL)
	req, _ := client.Request(context.Background(), u, http.MethodGet)

	var n int
	if err := c.Do(req, http.StatusOK, client.WithDestination(&n)); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("request id length:", n)
	// Output: request id length: 36
}
