package rategate_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/adamwoolhether/rategate"
	"github.com/adamwoolhether/rategate/client"
	"github.com/adamwoolhether/rategate/gate"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"msg":"stored"}`)
	}))
	defer ts.Close()

	c, err := rategate.NewClient(
		client.WithTimeout(5*time.Second),
		client.WithThrottle(30, time.Minute),
	)
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	u, _ := url.Parse(ts.URL)

	req, err := client.Request(context.Background(), u, http.MethodPost,
		client.WithPayload(map[string]string{"title": "minutes"}),
	)
	if err != nil {
		fmt.Println("request error:", err)
		return
	}

	var resp struct{ Msg string }
	if err := c.Do(req, http.StatusCreated, client.WithDestination(&resp)); err != nil {
		fmt.Println("do error:", err)
		return
	}

	fmt.Println(resp.Msg, c.Gate().Stats().Available())
	// Output: stored 29
}

func ExampleNewGate() {
	g, err := rategate.NewGate(2, time.Second)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	sum, err := gate.Run(context.Background(), g, func(context.Context) (int, error) {
		return 40 + 2, nil
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(sum, g.Stats().Used)
	// Output: 42 1
}
