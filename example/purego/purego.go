// Pure Go example that runs the pose pipeline without OpenCV, using the
// imaging based preprocessor and printing the detection instead of
// rendering it.
package main

import (
	"flag"
	"log"

	"github.com/disintegration/imaging"
	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/onnx"
	"github.com/swdee/go-poselite/postprocess"
	"github.com/swdee/go-poselite/preprocess"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/yolov8n-pose.onnx", "ONNX exported YOLO pose model file")
	imgFile := flag.String("i", "../data/person.jpg", "Image file to run pose estimation on")
	namesFile := flag.String("k", "", "Text file containing keypoint names the model was trained with, empty for built in COCO names")
	ortLib := flag.String("r", "", "Path to the onnxruntime shared library, empty for platform default")
	threshold := flag.Float64("t", 0.5, "Confidence threshold for reporting the detection")
	size := flag.Int("s", 640, "Model input tensor size")

	flag.Parse()

	// load in Model keypoint names
	kpNames := poselite.COCOKeyPointNames

	if *namesFile != "" {
		var err error
		kpNames, err = poselite.LoadKeyPointNames(*namesFile)

		if err != nil {
			log.Fatal("Error loading keypoint names: ", err)
		}
	}

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

	// load image, imaging applies EXIF orientation on open
	img, err := imaging.Open(*imgFile, imaging.AutoOrientation(true))

	if err != nil {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	srcWidth := img.Bounds().Dx()
	srcHeight := img.Bounds().Dy()

	resizer, err := preprocess.NewPureResizer(srcWidth, srcHeight,
		sess.InputWidth(), sess.InputHeight(), poselite.NewBufferPool())

	if err != nil {
		log.Fatal("Error creating resizer: ", err)
	}

	input, err := resizer.Preprocess(img)

	if err != nil {
		log.Fatal("Error preprocessing image: ", err)
	}

	defer resizer.Release(input)

	// perform inference on image file
	outputs, err := sess.Run(input)

	if err != nil {
		log.Fatal("Runtime inferencing failed with error: ", err)
	}

	// extract best detection and map to source image coordinates
	poseProcessor := postprocess.NewPose(postprocess.PoseCOCOParams())

	det, err := poseProcessor.SelectBest(outputs)

	if err != nil {
		log.Fatal("Error selecting detection: ", err)
	}

	det = postprocess.Unmap(det, resizer.Letterbox())

	if det.Score <= float32(*threshold) {
		log.Printf("No subject detected above threshold %.2f, best score %.2f\n",
			*threshold, det.Score)
		return
	}

	log.Printf("Detection score=%.2f box=(%.1f,%.1f)-(%.1f,%.1f)\n",
		det.Score, det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)

	for i, kp := range det.KeyPoints {
		name := "keypoint"

		if i < len(kpNames) {
			name = kpNames[i]
		}

		log.Printf("  %-14s x=%7.1f y=%7.1f score=%.2f\n",
			name, kp.X, kp.Y, kp.Score)
	}
}
