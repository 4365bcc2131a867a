package main

import (
	"flag"
	"log"
	"time"

	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/onnx"
	"github.com/swdee/go-poselite/postprocess"
	"github.com/swdee/go-poselite/preprocess"
	"github.com/swdee/go-poselite/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/yolov8n-pose.onnx", "ONNX exported YOLO pose model file")
	imgFile := flag.String("i", "../data/person.jpg", "Image file to run pose estimation on")
	saveFile := flag.String("o", "../data/person-pose-out.jpg", "The output JPG file with pose markers")
	ortLib := flag.String("r", "", "Path to the onnxruntime shared library, empty for platform default")
	threshold := flag.Float64("t", 0.5, "Confidence threshold for rendering the detection")
	size := flag.Int("s", 640, "Model input tensor size")

	flag.Parse()

	err := onnx.Init(*ortLib)

	if err != nil {
		log.Fatal("Error initializing ONNX runtime: ", err)
	}

	defer onnx.Destroy()

	// create inference session
	sess, err := onnx.NewSession(*modelFile, *size, *size)

	if err != nil {
		log.Fatal("Error creating ONNX session: ", err)
	}

	defer sess.Close()

	// create pose post processor
	poseProcessor := postprocess.NewPose(postprocess.PoseCOCOParams())

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	// convert colorspace for the model input
	rgbImg := gocv.NewMat()
	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

	defer rgbImg.Close()

	resizer, err := preprocess.NewResizer(img.Cols(), img.Rows(),
		sess.InputWidth(), sess.InputHeight(), poselite.NewBufferPool())

	if err != nil {
		log.Fatal("Error creating resizer: ", err)
	}

	defer resizer.Close()

	start := time.Now()

	input, err := resizer.Preprocess(rgbImg)

	if err != nil {
		log.Fatal("Error preprocessing image: ", err)
	}

	defer resizer.Release(input)

	endPreprocess := time.Now()

	// perform inference on image file
	outputs, err := sess.Run(input)

	if err != nil {
		log.Fatal("Runtime inferencing failed with error: ", err)
	}

	endInference := time.Now()

	// extract best detection and map to source image coordinates
	det, err := poseProcessor.SelectBest(outputs)

	if err != nil {
		log.Fatal("Error selecting detection: ", err)
	}

	det = postprocess.Unmap(det, resizer.Letterbox())

	endDetect := time.Now()

	// render pose onto output image
	outImg := gocv.NewMat()
	defer outImg.Close()

	surface := render.NewMatSurface(&outImg)
	renderer := render.NewPose()

	drawn := renderer.Render(img, det, float32(*threshold), surface)

	endRender := time.Now()

	log.Printf("Model first run speed: preprocess=%s, inference=%s, post processing=%s, rendering=%s, total time=%s\n",
		endPreprocess.Sub(start).String(),
		endInference.Sub(endPreprocess).String(),
		endDetect.Sub(endInference).String(),
		endRender.Sub(endDetect).String(),
		endRender.Sub(start).String(),
	)

	if !drawn {
		log.Printf("No subject detected above threshold %.2f (best score %.2f), nothing to render\n",
			*threshold, det.Score)
		return
	}

	log.Printf("Detection score=%.2f box=(%.1f,%.1f)-(%.1f,%.1f)\n",
		det.Score, det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)

	if ok := gocv.IMWrite(*saveFile, outImg); !ok {
		log.Fatal("Failed to save the image to: ", *saveFile)
	}

	log.Println("Saved pose estimation result to ", *saveFile)
}
