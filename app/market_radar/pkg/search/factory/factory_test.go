package factory

import (
	"testing"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/searxng"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/tavily"
)

func TestNewSearcher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SearchConfig
		wantErr bool
		check   func(search.Searcher) bool
	}{
		{
			name:  "tavily",
			cfg:   config.SearchConfig{Provider: "tavily", Tavily: config.TavilyConfig{APIKey: "k"}},
			check: func(s search.Searcher) bool { _, ok := s.(*tavily.Client); return ok },
		},
		{
			name:    "tavily without key",
			cfg:     config.SearchConfig{Provider: "tavily"},
			wantErr: true,
		},
		{
			name:  "searxng",
			cfg:   config.SearchConfig{Provider: "searxng", SearXNG: config.SearXNGConfig{BaseURL: "http://127.0.0.1:8888"}},
			check: func(s search.Searcher) bool { _, ok := s.(*searxng.Client); return ok },
		},
		{
			name:  "web chain",
			cfg:   config.SearchConfig{Provider: "web"},
			check: func(s search.Searcher) bool { _, ok := s.(*search.Chain); return ok },
		},
		{
			name:    "unknown",
			cfg:     config.SearchConfig{Provider: "altavista"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearcher(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSearcher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(s) {
				t.Errorf("NewSearcher() returned %T", s)
			}
		})
	}
}
