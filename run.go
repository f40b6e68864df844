package qurantag

import (
	"context"
)

type RunReport struct {
	Split      *StageReport `json:"split"`
	Classify   *StageReport `json:"classify"`
	Reclassify *StageReport `json:"reclassify"`
	Merge      *MergeResult `json:"merge"`
}

// Run executes split, classify, reclassify and merge in that order. Split
// keeps existing shard files, so a rerun only fills the gaps. A failing stage
// does not stop the later ones; their errors are combined.
func (p *Pipeline) Run(ctx context.Context, opt MergeOption) (*RunReport, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	errs := &CombinedError{Message: "run failed"}
	result := &RunReport{}
	var err error
	result.Split, err = p.split(ctx)
	errs.appendIfError(err)
	result.Classify, err = p.classify(ctx, nil)
	errs.appendIfError(err)
	result.Reclassify, err = p.reclassify(ctx, nil)
	errs.appendIfError(err)
	result.Merge, err = p.merge(ctx, opt)
	errs.appendIfError(err)
	return result, errs.errorOrNil()
}
