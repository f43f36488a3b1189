package export

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestBlankDetector(t *testing.T) {
	withBlock := func(bg color.Color, block image.Rectangle, fg color.Color) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, 640, 640))
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		draw.Draw(img, block, image.NewUniform(fg), image.Point{}, draw.Src)
		return img
	}

	tests := []struct {
		name string
		img  image.Image
		min  int
		want bool
	}{
		{name: "nil", img: nil, want: true},
		{name: "empty bounds", img: image.NewRGBA(image.Rect(0, 0, 0, 0)), want: true},
		{name: "white", img: solid(color.White), want: true},
		{name: "transparent", img: image.NewRGBA(image.Rect(0, 0, 100, 100)), want: true},
		{name: "near white", img: solid(color.RGBA{R: 252, G: 252, B: 252, A: 255}), want: true},
		{name: "black", img: solid(color.Black), want: false},
		{
			name: "large dark block",
			img:  withBlock(color.White, image.Rect(100, 100, 300, 200), color.Black),
			want: false,
		},
		{
			name: "one dark sample cell is below threshold",
			img:  withBlock(color.White, image.Rect(0, 0, 10, 10), color.Black),
			want: true,
		},
		{
			name: "custom threshold",
			img:  withBlock(color.White, image.Rect(0, 0, 10, 10), color.Black),
			min:  1,
			want: false,
		},
		{
			name: "translucent ink is ignored",
			img:  withBlock(color.Transparent, image.Rect(0, 0, 640, 640), color.NRGBA{A: 5}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlankDetector{MinInked: tt.min}.Blank(tt.img)
			if got != tt.want {
				t.Errorf("Blank() = %v, want %v", got, tt.want)
			}
		})
	}
}
