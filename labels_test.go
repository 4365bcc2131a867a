package poselite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeyPointNames(t *testing.T) {

	tests := []struct {
		name     string
		contents string
		want     []string
	}{
		{
			"one name per line",
			"nose\nleft_eye\nright_eye\n",
			[]string{"nose", "left_eye", "right_eye"},
		},
		{
			"whitespace is trimmed",
			"  nose\t\nleft_eye \n",
			[]string{"nose", "left_eye"},
		},
		{
			"no trailing newline",
			"nose\nleft_eye",
			[]string{"nose", "left_eye"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "names.txt")

			if err := os.WriteFile(file, []byte(tc.contents), 0644); err != nil {
				t.Fatalf("error writing names file: %v", err)
			}

			names, err := LoadKeyPointNames(file)

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(names) != len(tc.want) {
				t.Fatalf("got %d names, want %d", len(names), len(tc.want))
			}

			for i, want := range tc.want {
				if names[i] != want {
					t.Errorf("name %d = %q, want %q", i, names[i], want)
				}
			}
		})
	}
}

func TestLoadKeyPointNamesMissingFile(t *testing.T) {

	_, err := LoadKeyPointNames(filepath.Join(t.TempDir(), "missing.txt"))

	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCOCOKeyPointNamesCount(t *testing.T) {

	if len(COCOKeyPointNames) != KeyPointNum {
		t.Errorf("COCO keypoint names = %d, want %d",
			len(COCOKeyPointNames), KeyPointNum)
	}
}
