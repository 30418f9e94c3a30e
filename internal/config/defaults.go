package config

// DefaultTitle heads the text and Markdown renderings.
const DefaultTitle = "ML Host System and Configuration Information"

// DefaultPriorityKeys are rendered first, in this order, by the text and tree views.
var DefaultPriorityKeys = []string{
	"Version", "CUDA Available", "GPU Count", "Devices", "Default Dtype",
	"System", "Physical Cores", "Logical Cores", "Model", "Major Version",
	"Minor Version", "Has CUDA", "Has MKL", "Python Version", "Implementation",
	"Timestamp", "Script",
}

// DefaultRelatedPackages are matched by substring against installed Python distributions.
var DefaultRelatedPackages = []string{
	"torch", "torchvision", "torchaudio", "torchtext", "numpy",
	"pandas", "scipy", "pillow", "matplotlib", "tensorboard",
	"sklearn", "onnx", "cuda", "pytorch-lightning", "lightning",
	"torchmetrics", "transformers",
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{
			Title: DefaultTitle,
		},
		Render: RenderConfig{
			PriorityKeys: append([]string(nil), DefaultPriorityKeys...),
			Indent:       4,
		},
		Probes: ProbesConfig{
			TimeoutSeconds: 10,
		},
		Python: PythonConfig{
			Executable:      "python3",
			RelatedPackages: append([]string(nil), DefaultRelatedPackages...),
		},
		Resolv: ResolvConfig{
			File:       "/etc/resolv.conf",
			Nameserver: "10.50.10.50",
		},
		Bench: BenchConfig{
			Size:       512,
			Iterations: 10,
			Warmup:     2,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
