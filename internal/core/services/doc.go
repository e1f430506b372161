// Package services implements the driving port interfaces.
// Services contain the core business logic: feed orchestration and page
// merging, banner resolution, and credential management. They reach
// infrastructure only through the driven ports.
package services
