package searxng

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("categories") != "news" || q.Get("q") != "fintech industry news" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"query":"fintech industry news","results":[
			{"title":"A","url":"https://a.example","content":"x"},
			{"title":"B","url":"https://b.example"},
			{"title":"C","url":"https://c.example"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5)
	resp, err := c.Search(context.Background(), &search.Request{Query: "fintech industry news", Topic: search.TopicNews, MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[1].URL != "https://b.example" {
		t.Errorf("Results[1] = %+v", resp.Results[1])
	}
}

func TestClient_SearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 5).Search(context.Background(), &search.Request{Query: "q"}); err == nil {
		t.Error("Search() expected error on 403")
	}
}
