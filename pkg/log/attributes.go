// Package log defines standard attribute keys for training pipeline operations.
//
// This file contains predefined attribute keys that keep field names
// consistent across all logging in metaboost. Using these standard keys
// makes it possible to filter a full pipeline run by stage, fold, or model
// instance after the fact.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Pipeline and Cross-Validation Context
//   - Data Shape and Characteristics
//   - Performance Metrics
//   - Error Context
//   - Hyperparameters and Configuration
//
// Keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.
package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "Classifier"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	// Useful when the grid search fits many candidates of the same type.
	// Examples: "gbdt-001", "candidate-07"
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "predict_proba", "score", "grid_search"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "split", "boost", "tune", "evaluate"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	// Examples: "training", "validation", "testing", "reduction"
	PhaseKey = "ml.phase"
)

// Pipeline and Cross-Validation Context
// These attributes locate a log record within a pipeline run.
const (
	// StageKey names the pipeline stage emitting the record.
	// Examples: "load", "explore", "split", "train", "evaluate", "reduce"
	StageKey = "pipeline.stage"

	// ArtifactKey records the path of a file written by the pipeline.
	// Examples: "out/train_split.csv", "out/model_tuned.gob"
	ArtifactKey = "pipeline.artifact"

	// FoldKey records the zero-based cross-validation fold index.
	FoldKey = "cv.fold"

	// RepeatKey records the zero-based cross-validation repeat index.
	RepeatKey = "cv.repeat"

	// CandidateKey records the index of a hyperparameter candidate in the grid.
	CandidateKey = "tune.candidate"

	// CandidatesKey records the total number of candidates in the grid.
	CandidatesKey = "tune.candidates"

	// WorkersKey records the number of concurrent workers fitting candidates.
	WorkersKey = "tune.workers"

	// WorkerIDKey identifies a worker goroutine in the grid search pool.
	WorkerIDKey = "tune.worker_id"
)

// Data Shape and Characteristics
// These attributes describe the structure of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for tracking dimensionality across the reduction step.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct outcome classes.
	// Always 2 after loading succeeds.
	ClassesKey = "data.classes"

	// DroppedKey indicates the number of rows dropped during loading
	// because the outcome label was missing.
	DroppedKey = "data.dropped"
)

// Performance Metrics
// These attributes capture timing and evaluation results.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the execution time in seconds for longer
	// operations such as a full grid search.
	DurationSecondsKey = "perf.duration_seconds"

	// AccuracyKey records classification accuracy.
	// Range [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// LossKey records the training loss value.
	LossKey = "metrics.loss"

	// IterationKey records the current boosting round.
	IterationKey = "training.iteration"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"

	// ThresholdKey records the decision threshold used for classification.
	ThresholdKey = "preds.threshold"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "NON_BINARY_OUTCOME"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "LabelError", "DimensionError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Populated automatically by the error logging handler.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides a hint for resolving the issue.
	// Examples: "Check the outcome column for unexpected labels"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
// These attributes capture model configuration for reproducibility.
const (
	// HyperParamsKey contains the full hyperparameter set as a structured object.
	HyperParamsKey = "model.hyperparams"

	// LearningRateKey records the shrinkage applied to each boosting round.
	LearningRateKey = "hyperparams.learning_rate"

	// RegularizationKey records the L2 regularization strength.
	RegularizationKey = "hyperparams.regularization"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard operations
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationPredictProba = "predict_proba"
	OperationScore        = "score"
	OperationSearch       = "grid_search"
	OperationEvaluate     = "evaluate"

	// Standard phases
	PhaseTraining    = "training"
	PhaseValidation  = "validation"
	PhaseTesting     = "testing"
	PhaseExploration = "exploration"
	PhaseReduction   = "reduction"

	// Standard pipeline stages
	StageLoad     = "load"
	StageExplore  = "explore"
	StageSplit    = "split"
	StageTrain    = "train"
	StageEvaluate = "evaluate"
	StageReduce   = "reduce"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorNonBinaryOutcome  = "NON_BINARY_OUTCOME"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorFoldFailure       = "FOLD_FAILURE"
)
