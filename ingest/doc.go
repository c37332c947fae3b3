// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ingest turns raw records into embedded, persisted documents.
//
// The pipeline processes records in fixed-size batches: a bounded scheduler
// fans embedding calls out over a worker pool with retry and rate limiting,
// then a writer stamps the resulting vectors onto the records and persists
// them with unordered bulk writes. Progress is reported to the job tracker
// once per batch.
package ingest
