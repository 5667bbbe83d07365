// Package resources declares every mirrored AWS resource kind: how it is
// listed, the shape its items must match and how its files are named.
package resources

import (
	"context"
	"fmt"
	"strings"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/cfs/internal/writer"
	"github.com/yairfalse/cfs/storage"
)

// Resolver lists the regions regional kinds fan out over.
type Resolver interface {
	Names(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]ec2types.Region, error)
}

// Catalog builds the writers of every kind.
type Catalog struct {
	clients  Clients
	resolver Resolver
	tree     *storage.Tree
	opts     []writer.Option
}

// NewCatalog returns a catalog writing into tree.
func NewCatalog(clients Clients, resolver Resolver, tree *storage.Tree, opts ...writer.Option) *Catalog {
	return &Catalog{
		clients:  clients,
		resolver: resolver,
		tree:     tree,
		opts:     opts,
	}
}

// Regions returns the writer of the regions kind. It runs before every other
// kind so that a broken region listing is reported once.
func (c *Catalog) Regions() writer.Writer {
	return writer.New(regionsKind(c.resolver), c.tree, c.resolver, c.opts...)
}

// Writers returns the writers of every kind except regions, ordered by name.
func (c *Catalog) Writers() []writer.Writer {
	cl, t, r, o := c.clients, c.tree, c.resolver, c.opts
	return []writer.Writer{
		writer.New(compositeAlarmsKind(cl), t, r, o...),
		writer.New(metricAlarmsKind(cl), t, r, o...),
		writer.New(httpAPIsKind(cl), t, r, o...),
		writer.New(restAPIsKind(cl), t, r, o...),
		writer.New(bucketsKind(cl), t, r, o...),
		writer.New(canariesKind(cl), t, r, o...),
		writer.New(certificatesKind(cl), t, r, o...),
		writer.New(databasesKind(cl), t, r, o...),
		writer.New(distributionsKind(cl), t, r, o...),
		writer.New(domainsKind(cl), t, r, o...),
		writer.New(classicELBsKind(cl), t, r, o...),
		writer.New(v2ELBsKind(cl), t, r, o...),
		writer.New(functionsKind(cl), t, r, o...),
		writer.New(instancesKind(cl), t, r, o...),
		writer.New(logsKind(cl), t, r, o...),
		writer.New(parametersKind(cl), t, r, o...),
		writer.New(pipelinesKind(cl), t, r, o...),
		writer.New(policiesKind(cl), t, r, o...),
		writer.New(queuesKind(cl), t, r, o...),
		writer.New(rolesKind(cl), t, r, o...),
		writer.New(secretsKind(cl), t, r, o...),
		writer.New(stacksKind(cl), t, r, o...),
		writer.New(streamsKind(cl), t, r, o...),
		writer.New(tablesKind(cl), t, r, o...),
		writer.New(topicsKind(cl), t, r, o...),
		writer.New(usersKind(cl), t, r, o...),
		writer.New(vpcsKind(cl), t, r, o...),
	}
}

// Names lists every kind Writers returns.
func (c *Catalog) Names() []string {
	writers := c.Writers()
	names := make([]string, len(writers))
	for i, w := range writers {
		names[i] = w.Name()
	}
	return names
}

// Select returns the writers matching names. A name matches a kind exactly or
// as its top-level directory, so "alarms" selects both alarm kinds. An empty
// selection returns every writer.
func (c *Catalog) Select(names []string) ([]writer.Writer, error) {
	all := c.Writers()
	if len(names) == 0 {
		return all, nil
	}

	var selected []writer.Writer
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.Trim(strings.TrimSpace(name), "/")
		matched := false
		for _, w := range all {
			if w.Name() != name && !strings.HasPrefix(w.Name(), name+"/") {
				continue
			}
			matched = true
			if !seen[w.Name()] {
				seen[w.Name()] = true
				selected = append(selected, w)
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown resource kind %q", name)
		}
	}
	return selected, nil
}
