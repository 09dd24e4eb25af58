// Package assets names the debugger-visualizer files shipped alongside vizdeploy.
package assets

// Subfolder is the directory under the Visual Studio user directory that the
// debugger loads visualizers from.
const Subfolder = "Visualizers"

// VisualizerFiles is the ordered list of files deployed on every run:
// the visualizer assembly first, then its graph-rendering dependencies.
var VisualizerFiles = []string{
	"TPLDataFlowDebuggerVisualizer.dll",
	"GraphSharp.dll",
	"GraphSharp.Controls.dll",
	"QuickGraph.Data.dll",
	"QuickGraph.dll",
	"QuickGraph.Graphviz.dll",
	"QuickGraph.Serialization.dll",
	"WPFExtensions.dll",
}

// Files returns a copy of VisualizerFiles so callers cannot mutate the shipped list.
func Files() []string {
	out := make([]string, len(VisualizerFiles))
	copy(out, VisualizerFiles)
	return out
}
