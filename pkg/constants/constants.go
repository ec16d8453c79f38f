package constants

const (
	DefaultModelName   = "comfyui"
	DefaultServiceName = "comfyui-service"
	DefaultBaseImage   = "docker.io/library/python:3.11-slim"

	ModelManifestFile = "model.yaml"
	ModelArchiveFile  = "model.tar"
	BentoManifestFile = "bento.yaml"
	BentoArchiveFile  = "bento.tar"

	RequirementsFile = "requirements.txt"
	ServiceFile      = "service.py"
	WorkflowFile     = "workflow.json"

	// ServiceEntrypoint is the import string the serving runtime loads.
	ServiceEntrypoint = "service:ComfyUIService"

	BuildContextPrefix = "bentoml-comfyui-"
	BuildContextSuffix = "-bento"

	StoreLockFile = "store.lock"
)

// WorkspaceFingerprints are the subentries a ComfyUI source tree always contains.
var WorkspaceFingerprints = []string{"comfy", "comfy_execution", "comfy_extras"}

// DefaultSystemPackages are installed into every bento image. ComfyUI custom
// nodes commonly link against these at import time.
var DefaultSystemPackages = []string{
	"git",
	"libglib2.0-0",
	"libsm6",
	"libxrender1",
	"libxext6",
	"ffmpeg",
	"libstdc++-12-dev",
}
