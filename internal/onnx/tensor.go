package onnx

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// Tensor is a row-major float32 tensor. Images use NCHW.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// Normalization holds per-channel mean and standard deviation applied after
// scaling pixels to [0,1].
type Normalization struct {
	Mean [3]float32
	Std  [3]float32
}

// ImageNetNormalization is what DB-family detectors are trained with.
var ImageNetNormalization = Normalization{
	Mean: [3]float32{0.485, 0.456, 0.406},
	Std:  [3]float32{0.229, 0.224, 0.225},
}

// ImageTensor converts img to a [1,3,H,W] tensor.
func ImageTensor(img image.Image, norm Normalization) (Tensor, error) {
	if img == nil {
		return Tensor{}, errors.New("input image is nil")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Tensor{}, fmt.Errorf("empty image %dx%d", w, h)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	plane := w * h
	data := make([]float32, 3*plane)
	for y := range h {
		row := rgba.Pix[y*rgba.Stride:]
		for x := range w {
			px := row[x*4 : x*4+3]
			i := y*w + x
			for c := range 3 {
				v := float32(px[c]) / 255
				data[c*plane+i] = (v - norm.Mean[c]) / norm.Std[c]
			}
		}
	}
	return Tensor{Data: data, Shape: []int64{1, 3, int64(h), int64(w)}}, nil
}

// ValidateNCHW ensures a shape is [N, C, H, W] with positive dimensions.
func ValidateNCHW(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// Verify checks that the data length matches the shape.
func (t Tensor) Verify() error {
	if err := ValidateNCHW(t.Shape); err != nil {
		return err
	}
	expected := int(t.Shape[0] * t.Shape[1] * t.Shape[2] * t.Shape[3])
	if len(t.Data) != expected {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v", len(t.Data), expected, t.Shape)
	}
	return nil
}
