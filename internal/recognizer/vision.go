package recognizer

import (
	"context"
	"fmt"
	"image"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/MeKo-Tech/bubblex/internal/utils"
)

// Vision uses Google Cloud Vision document text detection with
// Application Default Credentials.
type Vision struct {
	client *gvision.ImageAnnotatorClient
}

// NewVision builds the backend.
func NewVision(ctx context.Context, _ Config) (*Vision, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

// Name implements Recognizer.
func (v *Vision) Name() string { return "vision" }

// Close releases the gRPC connection.
func (v *Vision) Close() error {
	return v.client.Close()
}

// Recognize implements Recognizer.
func (v *Vision) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := utils.EncodePNG(img)
	if err != nil {
		return "", err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: data},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}
	return visionText(resp)
}

func visionText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return "", fmt.Errorf("vision API error: %s", r.GetError().GetMessage())
	}
	if full := r.GetFullTextAnnotation(); full != nil {
		return NormalizeText(full.GetText()), nil
	}
	if anns := r.GetTextAnnotations(); len(anns) > 0 {
		return NormalizeText(anns[0].GetDescription()), nil
	}
	return "", nil
}
