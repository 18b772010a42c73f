package models

import (
	"errors"
	"testing"
)

func TestQueryRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      QueryRequest
		wantErr  bool
		wantTopK int
	}{
		{"valid", QueryRequest{Query: "library hours", TopK: 5}, false, 5},
		{"empty query", QueryRequest{Query: ""}, true, 0},
		{"negative topk clamped", QueryRequest{Query: "q", TopK: -3}, false, 0},
		{"huge topk clamped", QueryRequest{Query: "q", TopK: 100}, false, 20},
		{"zero topk passes through", QueryRequest{Query: "q"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error %v should be a ValidationError", err)
				}
			}
			if err == nil && tt.req.TopK != tt.wantTopK {
				t.Errorf("TopK = %d, want %d", tt.req.TopK, tt.wantTopK)
			}
		})
	}
}
