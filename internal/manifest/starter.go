package manifest

import (
	"fmt"
	"os"

	"github.com/shinji-kodama/runtime-bench/internal/model"
)

// starterYAML is the manifest written by "runtime-bench init". It declares
// the three canonical runtime targets of the comparison: the same Next.js
// app served by Node.js, Deno, and Bun, each listening on port 3000 inside
// its container and published on 3001/3002/3003 on the host.
//
// The container names are fixed because the external monitoring tool
// samples containers by these exact names.
const starterYAML = `# runtime-bench manifest.
# Each target is an isolated, independently buildable container exposing
# one HTTP health endpoint. Host ports must be unique across targets.
version: 1
project: runtime-comparison
gracePeriod: 30s

targets:
  - name: node
    title: Node.js
    build: ./node-app
    image: node-nextjs-app
    containerName: node-nextjs-app
    port: 3001
    containerPort: 3000
    healthPath: /
    healthInterval: 30s

  - name: deno
    title: Deno
    build: ./deno-app
    image: deno-nextjs-app
    containerName: deno-nextjs-app
    port: 3002
    containerPort: 3000
    healthPath: /
    healthInterval: 30s

  - name: bun
    title: Bun
    build: ./bun-app
    image: bun-nextjs-app
    containerName: bun-nextjs-app
    port: 3003
    containerPort: 3000
    healthPath: /
    healthInterval: 30s
`

// WriteStarter writes the starter manifest to the given path. It refuses
// to overwrite an existing file so a stray "init" cannot destroy a
// hand-edited manifest.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return model.NewCLIError(model.ExitManifestError,
			fmt.Sprintf("%s already exists — remove it first to re-initialize", path))
	}
	if err := os.WriteFile(path, []byte(starterYAML), 0o644); err != nil {
		return model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
