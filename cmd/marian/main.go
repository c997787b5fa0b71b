// Command marian demonstrates the parameter-update engine end to end:
// it builds an optimizer from a YAML config or flags, minimizes a
// small quadratic objective, checkpoints the optimizer's auxiliary
// state halfway through, and finishes the run on a fresh optimizer
// restored from that checkpoint.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/jgqwhucs/marian/optim"
	"github.com/jgqwhucs/marian/tensor"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML optimizer configuration file")
		algorithm  = flag.String("algorithm", "", "override algorithm: sgd, adagrad, or adam")
		eta        = flag.Float64("eta", 0, "override learning rate")
		steps      = flag.Int("steps", 200, "number of update steps")
		dim        = flag.Int("dim", 64, "parameter count")
		stateName  = flag.String("state", "demo.optimizer", "logical name for the optimizer state")
	)
	klog.InitFlags(nil)
	flag.Parse()

	if err := run(*configPath, *algorithm, float32(*eta), *steps, *dim, *stateName); err != nil {
		fmt.Fprintln(os.Stderr, "marian:", err)
		os.Exit(1)
	}
}

func run(configPath, algorithm string, eta float32, steps, dim int, stateName string) error {
	cfg := optim.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = optim.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}
	if algorithm != "" {
		cfg.Algorithm = algorithm
	}
	if eta > 0 {
		cfg.Eta = eta
	}

	opt, err := optim.FromConfig(cfg, nil)
	if err != nil {
		return err
	}

	device := tensor.DeviceID{Kind: tensor.CPU}
	params := tensor.NewBuffer(dim, device)
	params.Fill(1)
	grads := tensor.NewBuffer(dim, device)
	target := tensor.NewBuffer(dim, device)
	for i, t := 0, target.Data(); i < dim; i++ {
		t[i] = float32(math.Sin(float64(i)))
	}

	fmt.Printf("minimizing a %d-dim quadratic with %s (eta=%g)\n", dim, cfg.Algorithm, cfg.Eta)
	bar := progressbar.Default(int64(steps), "optimizing")

	half := steps / 2
	for step := 0; step < half; step++ {
		gradient(params, target, grads)
		opt.Update(params, grads)
		_ = bar.Add(1)
	}

	// Checkpoint the auxiliary state and hand the run to a fresh
	// optimizer, as a restarted training process would.
	if err := opt.Save(stateName, nil, optim.ConcatGather(1), true); err != nil {
		return err
	}
	resumed, err := optim.FromConfig(cfg, nil)
	if err != nil {
		return err
	}
	if err := resumed.Load(stateName, nil, optim.CPUDevices(1), optim.ShardScatter([]int{dim})); err != nil {
		return err
	}

	for step := half; step < steps; step++ {
		gradient(params, target, grads)
		resumed.Update(params, grads)
		_ = bar.Add(1)
	}

	fmt.Printf("final loss: %.6g (optimizer state saved under %q)\n", loss(params, target), stateName)
	return nil
}

// gradient computes d/dp of 0.5*||p - t||^2 into grads.
func gradient(params, target, grads *tensor.Buffer) {
	p, t, g := params.Data(), target.Data(), grads.Data()
	for i := range g {
		g[i] = p[i] - t[i]
	}
}

func loss(params, target *tensor.Buffer) float64 {
	var sum float64
	p, t := params.Data(), target.Data()
	for i := range p {
		d := float64(p[i] - t[i])
		sum += 0.5 * d * d
	}
	return sum
}
