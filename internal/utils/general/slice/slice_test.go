package slice_test

import (
	"reflect"
	"testing"

	"github.com/open-edge-platform/rocdecode-tool/internal/utils/general/slice"
)

func TestContains(t *testing.T) {
	items := []string{"gcc", "cmake"}
	if !slice.Contains(items, "cmake") {
		t.Error("expected cmake to be found")
	}
	if slice.Contains(items, "git") {
		t.Error("did not expect git to be found")
	}
	if slice.Contains(nil, "git") {
		t.Error("nil slice contains nothing")
	}
}

func TestUnique(t *testing.T) {
	got := slice.Unique([]string{"libva2", "libva-devel", "libva2"})
	want := []string{"libva2", "libva-devel"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReplace(t *testing.T) {
	in := []string{"libva", "libva-devel", "libva-utils"}
	got := slice.Replace(in, map[string]string{"libva": "libva2", "libva-utils": "libva2"})
	want := []string{"libva2", "libva-devel", "libva2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if in[0] != "libva" {
		t.Error("input slice must not be modified")
	}
}
