package scaffold

import (
	"io"
	"text/template"
)

// serviceTemplate is the generated service entry point. The serving runtime
// loads it as "service:ComfyUIService".
const serviceTemplate = `import json
import os
import subprocess
import sys
import time
from pathlib import Path

import bentoml

WORKFLOW_FILE = Path(__file__).parent / "workflow.json"
COMFYUI_PORT = 8188


@bentoml.service(
    name="{{.Name}}",
    traffic={"timeout": 600},
    resources={"gpu": 1},
)
class ComfyUIService:
    model = bentoml.models.get("{{.ModelTag}}")

    def __init__(self) -> None:
        self.workspace = self.model.path
        self.process = subprocess.Popen(
            [sys.executable, "main.py", "--port", str(COMFYUI_PORT)],
            cwd=self.workspace,
            env={**os.environ, "COMFYUI_PATH": self.workspace},
        )
        self._wait_until_ready()

    def _wait_until_ready(self, timeout: float = 300.0) -> None:
        import urllib.request

        deadline = time.monotonic() + timeout
        while time.monotonic() < deadline:
            try:
                urllib.request.urlopen(f"http://127.0.0.1:{COMFYUI_PORT}/system_stats")
                return
            except OSError:
                time.sleep(1.0)
        raise RuntimeError("ComfyUI did not become ready in time")

    @bentoml.api
    def generate(self, overrides: dict | None = None) -> dict:
        import urllib.request

        with open(WORKFLOW_FILE) as f:
            prompt = json.load(f)
        for key, value in (overrides or {}).items():
            node_id, _, input_name = key.partition(".")
            prompt[node_id]["inputs"][input_name] = value
        req = urllib.request.Request(
            f"http://127.0.0.1:{COMFYUI_PORT}/prompt",
            data=json.dumps({"prompt": prompt}).encode(),
            headers={"Content-Type": "application/json"},
        )
        with urllib.request.urlopen(req) as resp:
            return json.load(resp)

    def __del__(self) -> None:
        if getattr(self, "process", None) is not None:
            self.process.terminate()
`

var serviceTpl = template.Must(template.New("service").Parse(serviceTemplate))

type serviceParams struct {
	Name     string
	ModelTag string
}

func renderService(w io.Writer, name, modelTag string) error {
	return serviceTpl.Execute(w, serviceParams{Name: name, ModelTag: modelTag})
}
