package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swdee/go-poselite/onnx"
	"github.com/swdee/go-poselite/pipeline"
	"github.com/swdee/go-poselite/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/yolov8n-pose.onnx", "ONNX exported YOLO pose model file")
	vidFile := flag.String("v", "../data/person-walking.mp4", "Video file or capture device to run pose estimation on")
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

	// open video source
	video, err := gocv.OpenVideoCapture(*vidFile)

	if err != nil {
		log.Fatal("Error opening video source: ", err)
	}

	defer video.Close()

	window := gocv.NewWindow("go-poselite stream")
	defer window.Close()

	// annotated output image the pipeline renders onto
	outImg := gocv.NewMat()
	defer outImg.Close()

	pl := pipeline.New(sess, render.NewMatSurface(&outImg), float32(*threshold))
	defer pl.Close()

	// stop the pipeline on interrupt so no draw can occur after shutdown
	// begins
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sig
		pl.Stop()
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	rgbFrame := gocv.NewMat()
	defer rgbFrame.Close()

	showFrame := gocv.NewMat()
	defer showFrame.Close()

	// used for calculating FPS
	frameCount := 0
	fpsMark := time.Now()
	fps := float64(0)

	// each iteration fully processes one frame before the next is read,
	// slow inference naturally throttles the frame rate
	for !pl.Stopped() {

		if ok := video.Read(&frame); !ok || frame.Empty() {
			log.Println("Video source closed")
			break
		}

		// model input is RGB
		gocv.CvtColor(frame, &rgbFrame, gocv.ColorBGRToRGB)

		det, drawn, err := pl.ProcessFrame(rgbFrame)

		if err != nil {
			// a failed frame is simply not rendered, the next frame
			// proceeds independently
			log.Printf("Frame dropped: %v\n", err)
			continue
		}

		frameCount++

		if frameCount >= 30 {
			fps = float64(frameCount) / time.Since(fpsMark).Seconds()
			frameCount = 0
			fpsMark = time.Now()
		}

		if !drawn {
			// nothing above threshold, show the raw frame
			window.IMShow(frame)
		} else {
			// surface was rendered in RGB, convert back for display
			gocv.CvtColor(outImg, &showFrame, gocv.ColorRGBToBGR)
			window.IMShow(showFrame)
		}

		window.SetWindowTitle(windowTitle(fps, det.Score, drawn))

		if key := window.WaitKey(1); key == 'q' || key == 27 {
			pl.Stop()
		}
	}
}

// windowTitle formats the window title with FPS and detection details
func windowTitle(fps float64, score float32, drawn bool) string {

	if !drawn {
		return fmt.Sprintf("go-poselite stream - %.1f FPS - no subject", fps)
	}

	return fmt.Sprintf("go-poselite stream - %.1f FPS - score %.2f", fps, score)
}
