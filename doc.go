/*
go-poselite provides post processing for single subject YOLOv8-pose style
networks.  It takes the raw [1,56,8400] output tensor produced by an
inference runtime and turns it into a single best detection with 17 COCO
keypoints mapped back into the coordinate space of the original unresized
image or video frame, ready for rendering.

Model loading and inference execution are not owned by this library, they
are performed by an Inferencer collaborator such as the ONNX Runtime
adapter in the onnx subdirectory.

See example code and usage in the example subdirectory.
*/
package poselite
