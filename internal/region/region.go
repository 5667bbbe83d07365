// Package region resolves the enabled regions of the account once per run.
package region

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

// EC2API defines the EC2 operations used by the resolver.
type EC2API interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Item is the shape of one listed region.
var Item = shape.Object(
	shape.Required("RegionName", shape.String().Max(100)),
	shape.Optional("Endpoint", shape.String().Max(500)),
	shape.Optional("OptInStatus", shape.String().Max(500)),
)

// Collection requires at least one region.
var Collection = shape.Array(Item).Min(1).Max(1000)

// Resolver lists regions and memoizes the first successful result for the
// rest of its lifetime. It is safe for concurrent use.
type Resolver struct {
	client EC2API

	mu      sync.Mutex
	filter  string
	regions []ec2types.Region
}

// NewResolver returns a resolver backed by client.
func NewResolver(client EC2API) *Resolver {
	return &Resolver{client: client}
}

// Set restricts discovery to one region. Empty names are ignored. A filter
// set after the first successful List has no effect on the cached result.
func (r *Resolver) Set(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = name
}

// List returns the enabled regions, fetching them on first use. Failed
// fetches are not cached.
func (r *Resolver) List(ctx context.Context) ([]ec2types.Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.regions != nil {
		return r.regions, nil
	}

	input := &ec2.DescribeRegionsInput{AllRegions: aws.Bool(false)}
	if r.filter != "" {
		input.Filters = []ec2types.Filter{{
			Name:   aws.String("region-name"),
			Values: []string{r.filter},
		}}
	}

	output, err := r.client.DescribeRegions(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("describe regions: %w", err)
	}

	docs, err := writer.DecodePage(output.Regions)
	if err != nil {
		return nil, err
	}
	if err := shape.Validate(Collection, docs); err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	r.regions = output.Regions
	log.Debug().Int("count", len(r.regions)).Str("filter", r.filter).Msg("regions resolved")
	return r.regions, nil
}

// Names returns the names of the enabled regions.
func (r *Resolver) Names(ctx context.Context) ([]string, error) {
	regions, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(regions))
	for _, reg := range regions {
		names = append(names, aws.ToString(reg.RegionName))
	}
	return names, nil
}
