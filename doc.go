// Package metaboost implements a survival classification pipeline for
// clinical gene expression studies, built around a native gradient
// boosting trainer.
//
// The pipeline loads a METABRIC-style CSV, collapses the survival
// annotations into a binary outcome, explores the cohort with PCA,
// splits it into stratified train and test partitions, fits a baseline
// boosting model, tunes hyperparameters with a grid search under
// repeated stratified cross-validation, and retrains on the features
// the tuned model actually used. Every intermediate product is written
// to disk so a run can be audited afterwards.
//
// # Quick Start
//
// Describe a run in YAML and execute it end to end:
//
//	metaboost -config metaboost.yaml
//
// Or drive the stages from Go:
//
//	cfg, err := pipeline.LoadConfig("metaboost.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := pipeline.Run(ctx, cfg, logger); err != nil {
//	    log.Fatal(err)
//	}
//
// The boosting model is also usable on its own through a
// scikit-learn-like estimator:
//
//	clf := boost.NewClassifier().
//	    WithNumRounds(200).
//	    WithLearningRate(0.05).
//	    WithSeed(42)
//	if err := clf.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	labels, err := clf.Predict(XTest)
//
// # Packages
//
//   - dataset: CSV loading, outcome encoding, row/column views, artifacts
//   - explore: PCA projection and the diagnostic PNG plots
//   - split: stratified holdout splitter and stratified k-fold
//   - boost: the gradient boosting trainer, model, and estimator wrapper
//   - tune: hyperparameter grids and repeated cross-validated search
//   - evaluate: held-out evaluation and console report rendering
//   - pipeline: stage orchestration, configuration, artifact layout
//   - metrics: classification metrics and the confusion matrix
//   - core/model: shared estimator interfaces, state, gob persistence
//   - core/parallel: chunked row-parallel execution helpers
//   - pkg/errors: typed errors, panic recovery, numerical guards
//   - pkg/log: structured logging facade with a zerolog backend
//
// # Reproducibility
//
// One seed in the run configuration drives the holdout shuffle, the
// cross-validation fold assignments, and the training subsampling, so
// two runs over the same CSV produce identical splits, identical fold
// scores, and byte-identical saved models.
package metaboost
