package fleet

import (
	"context"
	"log/slog"

	"shotty/src/ec2api"
)

// Action names a state-changing request.
type Action string

const (
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionSnapshot Action = "snapshot"
)

// Result is the outcome of one per-instance action. A service rejection of
// the request is recorded as Failed with its Reason; any other error aborts
// the run instead of producing a Result.
type Result struct {
	InstanceID string
	Action     Action
	Failed     bool
	Skipped    bool
	Reason     string
}

// StartInstances requests every filtered instance to start without waiting.
func (o *Operator) StartInstances(ctx context.Context, project string) ([]Result, error) {
	return o.power(ctx, project, ActionStart)
}

// StopInstances requests every filtered instance to stop without waiting.
func (o *Operator) StopInstances(ctx context.Context, project string) ([]Result, error) {
	return o.power(ctx, project, ActionStop)
}

func (o *Operator) power(ctx context.Context, project string, action Action) ([]Result, error) {
	instances, err := o.FilterInstances(ctx, project)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(instances))
	for _, inst := range instances {
		ok, err := o.confirm(string(action) + " instance " + inst.ID + "?")
		if err != nil {
			return results, err
		}
		if !ok {
			o.printf("Skipped %s of %s\n", action, inst.ID)
			results = append(results, Result{InstanceID: inst.ID, Action: action, Skipped: true})
			continue
		}
		res, err := o.transition(ctx, inst.ID, action)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// transition announces and requests a start or stop. Service rejections are
// reported and folded into the Result.
func (o *Operator) transition(ctx context.Context, id string, action Action) (Result, error) {
	res := Result{InstanceID: id, Action: action}
	var err error
	switch action {
	case ActionStart:
		o.printf("Starting instance %s...\n", id)
		err = o.Client.StartInstance(ctx, id)
	default:
		o.printf("Stopping instance %s...\n", id)
		err = o.Client.StopInstance(ctx, id)
	}
	switch {
	case err == nil:
		o.logger().Info("requested instance state change", slog.String("instance", id), slog.String("action", string(action)))
		return res, nil
	case ec2api.IsClientError(err):
		res.Failed = true
		res.Reason = ec2api.ErrorReason(err)
		o.printf("Could not %s %s. %s\n", action, id, res.Reason)
		o.logger().Warn("instance state change rejected",
			slog.String("instance", id),
			slog.String("action", string(action)),
			slog.String("error", err.Error()))
		return res, nil
	default:
		return res, err
	}
}
