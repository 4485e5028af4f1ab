package usecases_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tensorkernel/PDFTools/internal/domain/entities"
	usecases "github.com/tensorkernel/PDFTools/internal/usecase"
)

// fakePreviewRenderer управляемый рендерер страницы предпросмотра
type fakePreviewRenderer struct {
	sample []byte
	err    error
}

func (f *fakePreviewRenderer) RenderEncodedPage(data []byte, pageNumber int, config *entities.CompressionConfig) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sample, nil
}

func TestEstimateSize_Project(t *testing.T) {
	uc := usecases.NewEstimateSizeUseCase(nil, nil)

	tests := []struct {
		name         string
		sampleBytes  int
		pageCount    int
		originalSize int64
		expected     int64
	}{
		{
			// (1000+768)*10 + 4096 = 21776, *1.05 = 22864.8
			name:         "Projection with margin",
			sampleBytes:  1000,
			pageCount:    10,
			originalSize: 10_000_000,
			expected:     22864,
		},
		{
			name:         "Projection is clamped to the original size",
			sampleBytes:  1000,
			pageCount:    10,
			originalSize: 5000,
			expected:     5000,
		},
		{
			name:         "Zero pages returns original",
			sampleBytes:  1000,
			pageCount:    0,
			originalSize: 5000,
			expected:     5000,
		},
		{
			name:         "Zero original returns original",
			sampleBytes:  1000,
			pageCount:    10,
			originalSize: 0,
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := uc.Project(tt.sampleBytes, tt.pageCount, tt.originalSize)
			if got != tt.expected {
				t.Errorf("Project() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestEstimateSize_ProjectNeverExceedsOriginal(t *testing.T) {
	uc := usecases.NewEstimateSizeUseCase(nil, nil)

	for pages := 1; pages <= 500; pages += 7 {
		original := int64(pages) * 2000
		if got := uc.Project(5000, pages, original); got > original {
			t.Fatalf("Projection %d exceeds original %d at %d pages", got, original, pages)
		}
	}
}

func TestEstimateSize_Preview(t *testing.T) {
	preview := &fakePreviewRenderer{sample: bytes.Repeat([]byte{0x42}, 2048)}
	uc := usecases.NewEstimateSizeUseCase(preview, nil)

	config := &entities.CompressionConfig{Scale: 1.0, Quality: 0.65}
	data := bytes.Repeat([]byte{0x01}, 1_000_000)

	estimate, err := uc.Preview(data, 20, config)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if estimate.PageCount != 20 {
		t.Errorf("PageCount = %d, want 20", estimate.PageCount)
	}
	if estimate.ProjectedDPI != 72 {
		t.Errorf("ProjectedDPI = %d, want 72", estimate.ProjectedDPI)
	}
	if estimate.ProjectedSize <= 0 || estimate.ProjectedSize > int64(len(data)) {
		t.Errorf("ProjectedSize = %d is out of range", estimate.ProjectedSize)
	}
}

func TestEstimateSize_PreviewEmptyDocument(t *testing.T) {
	uc := usecases.NewEstimateSizeUseCase(&fakePreviewRenderer{}, nil)

	config := &entities.CompressionConfig{Scale: 1.0, Quality: 0.65}
	if _, err := uc.Preview([]byte("%PDF-1.7"), 0, config); !errors.Is(err, entities.ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument, got %v", err)
	}
}

func TestEstimateSize_PreviewRenderError(t *testing.T) {
	preview := &fakePreviewRenderer{err: errors.New("нет такой страницы")}
	uc := usecases.NewEstimateSizeUseCase(preview, nil)

	config := &entities.CompressionConfig{Scale: 1.0, Quality: 0.65}
	if _, err := uc.Preview([]byte("%PDF-1.7"), 3, config); err == nil {
		t.Error("Expected render error to propagate")
	}
}
