package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		shape   Shape
		items   int
		total   int
		current int
		size    int
	}{
		{"rows对象", `{"code":200,"msg":"ok","rows":[{"id":1},{"id":2}],"total":12}`, ShapeRows, 2, 12, 0, 0},
		{"data数组", `{"data":[{"id":1}],"total":"5","current":2,"size":20}`, ShapeData, 1, 5, 2, 20},
		{"裸数组", `[{"id":1},{"id":2},{"id":3}]`, ShapeArray, 3, 3, 0, 0},
		{"rows优先于data", `{"rows":[{"id":1}],"data":[{"id":1},{"id":2}]}`, ShapeRows, 1, 1, 0, 0},
		{"嵌套data对象", `{"code":200,"data":{"rows":[{"id":1}],"total":40,"current":3,"size":10}}`, ShapeRows, 1, 40, 3, 10},
		{"total缺省取行数", `{"rows":[{"id":1},{"id":2}]}`, ShapeRows, 2, 2, 0, 0},
		{"空rows", `{"rows":[],"total":0}`, ShapeRows, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NormalizePage([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, p.Shape)
			assert.Len(t, p.Items, tt.items)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.current, p.Current)
			assert.Equal(t, tt.size, p.Size)
		})
	}
}

func TestNormalizePage_Unrecognized(t *testing.T) {
	bodies := []string{
		`{"code":200,"msg":"ok"}`,
		`"text"`,
		`42`,
		`[1,2,3]`,
		`{"data":{"data":{"rows":[]}}}`,
		`not json`,
	}
	for _, body := range bodies {
		_, err := NormalizePage([]byte(body))
		assert.ErrorIs(t, err, ErrUnrecognizedShape, body)
	}
}
