// Package pkg holds the libraries behind the monist command.
//
// # Overview
//
// Monist manages npm monorepos: a root package.json whose "workspaces"
// field declares where the member packages live. The pkg directory is
// organized by concern:
//
//  1. [manifest] - Order-preserving package.json reading and editing
//  2. [monorepo] - Member discovery, validation and bulk manifest edits
//  3. [deptree] - Dependency forest and batch planning
//  4. [executor] - Running commands across a plan
//  5. [config] - Repository configuration and option resolution
//  6. [render] - Dependency graph drawing
//
// # Architecture
//
//	package.json files
//	         ↓
//	    [monorepo] package (load members, resolve local dependencies)
//	         ↓
//	    [deptree] package (forest + batches)
//	         ↓
//	    [executor] package (prepare local deps, run commands)
//
// # Quick Start
//
//	repo, err := monorepo.Load(".", monorepo.Options{})
//	if err != nil {
//	    return err
//	}
//	plan, err := repo.Plan()
//	if err != nil {
//	    return err
//	}
//	err = executor.New(nil, logger).Execute(ctx, plan,
//	    executor.Static("npm", "run", "build"), executor.Policy{})
//
// A runnable repository lives in examples/workspace.
package pkg
