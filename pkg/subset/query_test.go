package subset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Query)
		wantErr bool
	}{
		{name: "valid", mutate: func(q *Query) {}},
		{name: "valid with pad", mutate: func(q *Query) { q.PadKm = 0.5 }},
		{name: "same day", mutate: func(q *Query) { q.End = q.Start }},
		{name: "no product", mutate: func(q *Query) { q.Product = "" }, wantErr: true},
		{name: "no bands", mutate: func(q *Query) { q.Bands = nil }, wantErr: true},
		{name: "zero scale", mutate: func(q *Query) { q.Scale = 0 }, wantErr: true},
		{name: "scale below one metre", mutate: func(q *Query) { q.Scale = 0.5 }, wantErr: true},
		{name: "scale of one metre", mutate: func(q *Query) { q.Scale = 1 }},
		{name: "fractional scale", mutate: func(q *Query) { q.Scale = 30.7 }},
		{name: "scale too large", mutate: func(q *Query) { q.Scale = 1e19 }, wantErr: true},
		{name: "NaN scale", mutate: func(q *Query) { q.Scale = math.NaN() }, wantErr: true},
		{name: "negative pad", mutate: func(q *Query) { q.PadKm = -1 }, wantErr: true},
		{name: "end before start", mutate: func(q *Query) { q.End = q.Start.Add(-24 * time.Hour) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := testQuery()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductBase(t *testing.T) {
	assert.Equal(t, "S1_GRD", Query{Product: "COPERNICUS/S1_GRD"}.ProductBase())
	assert.Equal(t, "MOD13Q1", Query{Product: "MODIS/006/MOD13Q1"}.ProductBase())
	assert.Equal(t, "LANDSAT", Query{Product: "LANDSAT"}.ProductBase())
}
