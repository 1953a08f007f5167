package pagination_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func ptr(s string) *string { return &s }

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
	if cfg.MaxExportRows != 5000 {
		t.Errorf("MaxExportRows = %d, want 5000", cfg.MaxExportRows)
	}
}

func TestConfigFinalizeMalformedEnv(t *testing.T) {
	t.Setenv("TEST_MAX_EXPORT", "lots")

	cfg := pagination.Config{}
	err := cfg.Finalize(&pagination.ConfigEnv{MaxExportRows: "TEST_MAX_EXPORT"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "TEST_MAX_EXPORT") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestConfigFinalizeExportBelowPageSize(t *testing.T) {
	cfg := pagination.Config{MaxPageSize: 100, MaxExportRows: 50}
	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "max_export_rows") {
		t.Errorf("expected max_export_rows error, got %v", err)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "50")
	t.Setenv("TEST_MAX_PAGE", "200")

	env := &pagination.ConfigEnv{
		DefaultPageSize: "TEST_PAGE_SIZE",
		MaxPageSize:     "TEST_MAX_PAGE",
	}

	cfg := pagination.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
		t.Errorf("got %+v, want {50 200}", cfg)
	}
}

func TestConfigFinalizeDefaultExceedsMax(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "default_page_size cannot exceed max_page_size") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigDecodeTOML(t *testing.T) {
	var cfg pagination.Config
	data := []byte("default_page_size = 25\nmax_page_size = 250\n")
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.DefaultPageSize != 25 || cfg.MaxPageSize != 250 {
		t.Errorf("got %+v, want {25 250}", cfg)
	}
}

func TestConfigMerge(t *testing.T) {
	base := defaultConfig()
	overlay := pagination.Config{DefaultPageSize: 50}
	base.Merge(&overlay)

	if base.DefaultPageSize != 50 {
		t.Errorf("DefaultPageSize = %d, want 50", base.DefaultPageSize)
	}
	if base.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100 (unchanged)", base.MaxPageSize)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
		wantSearch   *string
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 20, nil},
		{"negative page corrected", pagination.PageRequest{Page: -1, PageSize: 10}, 1, 10, nil},
		{"page size clamped to max", pagination.PageRequest{Page: 1, PageSize: 500}, 1, 100, nil},
		{"valid values preserved", pagination.PageRequest{Page: 3, PageSize: 25}, 3, 25, nil},
		{"blank search cleared", pagination.PageRequest{Search: ptr("   ")}, 1, 20, nil},
		{"search trimmed", pagination.PageRequest{Search: ptr(" PO-1001 ")}, 1, 20, ptr("PO-1001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(cfg)
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
			switch {
			case tt.wantSearch == nil && tt.req.Search != nil:
				t.Errorf("Search = %q, want nil", *tt.req.Search)
			case tt.wantSearch != nil && (tt.req.Search == nil || *tt.req.Search != *tt.wantSearch):
				t.Errorf("Search = %v, want %q", tt.req.Search, *tt.wantSearch)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	tests := []struct {
		page, pageSize, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 10, 20},
	}

	for _, tt := range tests {
		req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
		if got := req.Offset(); got != tt.want {
			t.Errorf("Offset() page %d size %d = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := defaultConfig()

	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"page":      {"2"},
			"page_size": {"15"},
			"search":    {"8100"},
			"sort":      {"series,-inspectionDate"},
		}

		req := pagination.PageRequestFromQuery(values, cfg)

		if req.Page != 2 || req.PageSize != 15 {
			t.Errorf("page = %d size = %d, want 2 15", req.Page, req.PageSize)
		}
		if req.Search == nil || *req.Search != "8100" {
			t.Errorf("Search = %v, want 8100", req.Search)
		}
		if len(req.Sort) != 2 {
			t.Fatalf("Sort length = %d, want 2", len(req.Sort))
		}
		if req.Sort[1].Field != "inspectionDate" || !req.Sort[1].Descending {
			t.Errorf("Sort[1] = %v, want {inspectionDate true}", req.Sort[1])
		}
	})

	t.Run("repeated sort params", func(t *testing.T) {
		values := url.Values{"sort": {"series", "-inspectionDate"}}

		req := pagination.PageRequestFromQuery(values, cfg)
		if len(req.Sort) != 2 || req.Sort[0].Field != "series" || !req.Sort[1].Descending {
			t.Errorf("Sort = %v, want [series -inspectionDate]", req.Sort)
		}
	})

	t.Run("empty params get defaults", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, cfg)

		if req.Page != 1 || req.PageSize != 20 {
			t.Errorf("page = %d size = %d, want 1 20", req.Page, req.PageSize)
		}
		if req.Search != nil {
			t.Errorf("Search = %v, want nil", req.Search)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder", 101, 20, 6},
		{"single page", 5, 20, 1},
		{"empty result", 0, 20, 1},
		{"zero page size", 10, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Total != tt.total {
				t.Errorf("Total = %d, want %d", result.Total, tt.total)
			}
		})
	}
}

func TestNewPageResultNavigation(t *testing.T) {
	tests := []struct {
		page     int
		wantNext bool
		wantPrev bool
	}{
		{1, true, false},
		{2, true, true},
		{3, false, true},
	}

	for _, tt := range tests {
		result := pagination.NewPageResult([]string{"a"}, 45, tt.page, 20)
		if result.HasNext != tt.wantNext || result.HasPrevious != tt.wantPrev {
			t.Errorf("page %d: next=%v prev=%v, want next=%v prev=%v",
				tt.page, result.HasNext, result.HasPrevious, tt.wantNext, tt.wantPrev)
		}
	}
}

func TestNewPageResultNilDataBecomesEmpty(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil || len(result.Data) != 0 {
		t.Errorf("Data = %v, want empty slice", result.Data)
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"string", `"series,-completedDate"`},
		{"array", `[{"field":"series"},{"field":"completedDate","descending":true}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sf pagination.SortFields
			if err := json.Unmarshal([]byte(tt.input), &sf); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(sf) != 2 {
				t.Fatalf("length = %d, want 2", len(sf))
			}
			if sf[0] != (query.SortField{Field: "series"}) {
				t.Errorf("sf[0] = %v, want {series false}", sf[0])
			}
			if sf[1] != (query.SortField{Field: "completedDate", Descending: true}) {
				t.Errorf("sf[1] = %v, want {completedDate true}", sf[1])
			}
		})
	}
}
