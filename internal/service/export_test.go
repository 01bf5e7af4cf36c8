package service

// RebuildTotal exposes the rebuild counter to the external test package.
var RebuildTotal = rebuildTotal
