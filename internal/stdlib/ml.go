package stdlib

import (
	"math"

	"golang.org/x/exp/slices"

	"sentra/internal/ml"
	"sentra/internal/vm"
)

var mlModule = ml.NewMLModule()

// RegisterML installs ml_* natives. ml_detect_anomaly/ml_classify_threat
// wrap internal/ml.go's rule-based models directly; ml_mean_stddev and
// ml_kmeans_label are lighter natives operating on plain numeric Lists,
// using golang.org/x/exp/slices for the sort step a 1-D clustering needs.
func RegisterML(m *vm.VM) {
	m.RegisterNative("ml_detect_anomaly", nativeMLDetectAnomaly)
	m.RegisterNative("ml_classify_threat", nativeMLClassifyThreat)
	m.RegisterNative("ml_mean_stddev", nativeMLMeanStddev)
	m.RegisterNative("ml_kmeans_label", nativeMLKMeansLabel)
}

func nativeMLDetectAnomaly(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	modelName := "default"
	if argc >= 2 {
		modelName = args[1].Str()
	}
	result, err := mlModule.DetectAnomalies(objectToMap(args[0]), modelName)
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	obj.Set("is_anomalous", vm.Bool(result.IsAnomalous))
	obj.Set("score", vm.Float(result.Score))
	obj.Set("explanation", vm.String(result.Explanation))
	return vm.ObjectValue(obj)
}

func nativeMLClassifyThreat(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	modelName := "default"
	if argc >= 2 {
		modelName = args[1].Str()
	}
	result, err := mlModule.ClassifyThreat(objectToMap(args[0]), modelName)
	if err != nil {
		return vm.Null()
	}
	obj := vm.NewVMObject()
	obj.Set("class", vm.String(result.PredictedClass))
	obj.Set("confidence", vm.Float(result.Confidence))
	return vm.ObjectValue(obj)
}

func objectToMap(v vm.Value) map[string]interface{} {
	out := map[string]interface{}{}
	o := v.Object()
	if o == nil {
		return out
	}
	for _, key := range o.Keys() {
		val, _ := o.Get(key)
		out[key] = valueToScalar(val)
	}
	return out
}

func floats(v vm.Value) []float64 {
	items := v.ListItems()
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = toFloat(it)
	}
	return out
}

func toFloat(v vm.Value) float64 {
	switch v.Kind {
	case vm.KindInt:
		return float64(v.Int)
	case vm.KindFloat:
		return v.Float
	default:
		return 0
	}
}

func nativeMLMeanStddev(argc int, args []vm.Value) vm.Value {
	if argc < 1 {
		return vm.Null()
	}
	data := floats(args[0])
	if len(data) == 0 {
		return vm.Null()
	}
	var sum float64
	for _, x := range data {
		sum += x
	}
	mean := sum / float64(len(data))
	var sq float64
	for _, x := range data {
		d := x - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(data)))

	obj := vm.NewVMObject()
	obj.Set("mean", vm.Float(mean))
	obj.Set("stddev", vm.Float(stddev))
	return vm.ObjectValue(obj)
}

// nativeMLKMeansLabel buckets each input by which of k evenly spaced
// bands (over the sorted value range) it falls into — a deliberately
// simple 1-D clustering cheap enough to run per native call with no
// iterative refinement step.
func nativeMLKMeansLabel(argc int, args []vm.Value) vm.Value {
	if argc < 2 {
		return vm.Null()
	}
	data := floats(args[0])
	k := int(args[1].Int)
	if k < 1 || len(data) == 0 {
		return vm.Null()
	}

	sorted := append([]float64{}, data...)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	span := hi - lo
	if span == 0 {
		span = 1
	}

	labels := make([]vm.Value, len(data))
	for i, x := range data {
		band := int((x - lo) / span * float64(k))
		if band >= k {
			band = k - 1
		}
		labels[i] = vm.Int(int64(band))
	}
	return vm.ListVal(labels)
}
