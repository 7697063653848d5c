package sqlite

import (
	"testing"

	"github.com/imgdoc2/imgdoc2go/internal/model"
)

func TestPlaneIntersectionWhereBindOrder(t *testing.T) {
	cfg, err := NewConfiguration(3, DocTypeImage3d, nil, nil)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}

	plane := model.Plane{NormalX: 1, NormalY: 2, NormalZ: 3, Distance: 4}
	where := planeIntersectionWhere(cfg, plane)

	// Distance, then Nx, Ny, Nz (for the dot-product term), then Nz, Ny, Nx
	// again (for the abs-sum bound) - the original binds the normal's
	// components a second time in reverse order rather than reusing them.
	want := []any{4.0, 1.0, 2.0, 3.0, 3.0, 2.0, 1.0}
	if len(where.Binds) != len(want) {
		t.Fatalf("Binds = %v, want %d values", where.Binds, len(want))
	}
	for i, v := range want {
		if where.Binds[i] != v {
			t.Errorf("Binds[%d] = %v, want %v", i, where.Binds[i], v)
		}
	}
}
